package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"xpointconnect/backend/services/auth-service/internal/models"
)

const ownerColumns = `nic, first_name, last_name, email, phone_number, address, password_hash,
	is_active, requires_reactivation, created_at, updated_at`

// OwnerRepository handles CRUD for the ev_owners table.
type OwnerRepository struct {
	db *sqlx.DB
}

// NewOwnerRepository returns repository instance.
func NewOwnerRepository(db *sqlx.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

// Create inserts an owner. A registered NIC yields ErrAlreadyExists.
func (r *OwnerRepository) Create(ctx context.Context, o *models.EVOwner) error {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	const query = `
		INSERT INTO ev_owners (` + ownerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		o.NIC, o.FirstName, o.LastName, o.Email, o.PhoneNumber, o.Address, o.PasswordHash,
		o.IsActive, o.RequiresReactivation, o.CreatedAt, o.UpdatedAt)
	return translate(err)
}

// GetByNIC fetches an owner.
func (r *OwnerRepository) GetByNIC(ctx context.Context, nic string) (*models.EVOwner, error) {
	var o models.EVOwner
	if err := r.db.GetContext(ctx, &o, `SELECT `+ownerColumns+` FROM ev_owners WHERE nic = $1`, nic); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// List returns owners, optionally only those awaiting reactivation.
func (r *OwnerRepository) List(ctx context.Context, awaitingReactivation bool) ([]models.EVOwner, error) {
	query := `SELECT ` + ownerColumns + ` FROM ev_owners`
	if awaitingReactivation {
		query += ` WHERE requires_reactivation`
	}
	query += ` ORDER BY created_at DESC`

	owners := []models.EVOwner{}
	if err := r.db.SelectContext(ctx, &owners, query); err != nil {
		return nil, err
	}
	return owners, nil
}

// Update overwrites the mutable columns of an owner.
func (r *OwnerRepository) Update(ctx context.Context, o *models.EVOwner) error {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	const query = `
		UPDATE ev_owners
		SET first_name = $2, last_name = $3, email = $4, phone_number = $5, address = $6,
			password_hash = $7, is_active = $8, requires_reactivation = $9, updated_at = $10
		WHERE nic = $1
	`
	return expectOne(r.db.ExecContext(ctx, query,
		o.NIC, o.FirstName, o.LastName, o.Email, o.PhoneNumber, o.Address,
		o.PasswordHash, o.IsActive, o.RequiresReactivation, o.UpdatedAt))
}

// SetActivation writes both activation flags in one statement so they never disagree.
func (r *OwnerRepository) SetActivation(ctx context.Context, nic string, active bool, at time.Time) error {
	const query = `
		UPDATE ev_owners
		SET is_active = $2, requires_reactivation = $3, updated_at = $4
		WHERE nic = $1
	`
	return expectOne(r.db.ExecContext(ctx, query, nic, active, !active, at))
}

// Delete removes an owner.
func (r *OwnerRepository) Delete(ctx context.Context, nic string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM ev_owners WHERE nic = $1`, nic))
}
