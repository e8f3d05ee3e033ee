package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"xpointconnect/backend/services/booking-service/internal/models"
)

// OwnerRepository reads EV owner accounts managed by auth-service.
type OwnerRepository struct {
	db *sqlx.DB
}

// NewOwnerRepository returns repository.
func NewOwnerRepository(db *sqlx.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// GetOwner returns owner or ErrNotFound.
func (r *OwnerRepository) GetOwner(ctx context.Context, nic string) (*models.Owner, error) {
	const query = `
		SELECT nic, TRIM(first_name || ' ' || last_name) AS name, is_active
		FROM ev_owners
		WHERE nic = $1
	`
	var owner models.Owner
	if err := r.db.GetContext(ctx, &owner, query, nic); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &owner, nil
}
