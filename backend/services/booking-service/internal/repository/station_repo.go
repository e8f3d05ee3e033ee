package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"xpointconnect/backend/services/booking-service/internal/models"
)

const stationColumns = `
	id, name, latitude, longitude, address, city, province, type, total_slots, available_slots,
	schedule, is_active, operator_id, charging_rate, description, amenities, created_at, updated_at
`

type stationRow struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	Latitude       float64         `db:"latitude"`
	Longitude      float64         `db:"longitude"`
	Address        string          `db:"address"`
	City           string          `db:"city"`
	Province       string          `db:"province"`
	Type           string          `db:"type"`
	TotalSlots     int             `db:"total_slots"`
	AvailableSlots int             `db:"available_slots"`
	Schedule       models.Schedule `db:"schedule"`
	IsActive       bool            `db:"is_active"`
	OperatorID     string          `db:"operator_id"`
	ChargingRate   float64         `db:"charging_rate"`
	Description    string          `db:"description"`
	Amenities      pq.StringArray  `db:"amenities"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r stationRow) toModel() models.ChargingStation {
	amenities := []string(r.Amenities)
	if amenities == nil {
		amenities = []string{}
	}
	schedule := r.Schedule
	if schedule == nil {
		schedule = models.Schedule{}
	}
	return models.ChargingStation{
		ID:   r.ID,
		Name: r.Name,
		Location: models.Location{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Address:   r.Address,
			City:      r.City,
			Province:  r.Province,
		},
		Type:           models.StationType(r.Type),
		TotalSlots:     r.TotalSlots,
		AvailableSlots: r.AvailableSlots,
		Schedule:       schedule,
		IsActive:       r.IsActive,
		OperatorID:     r.OperatorID,
		ChargingRate:   r.ChargingRate,
		Description:    r.Description,
		Amenities:      amenities,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// StationRepository persists charging stations.
type StationRepository struct {
	db *sqlx.DB
}

// NewStationRepository returns repository.
func NewStationRepository(db *sqlx.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create inserts a station.
func (r *StationRepository) Create(ctx context.Context, s *models.ChargingStation) error {
	const query = `
		INSERT INTO charging_stations (` + stationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.ExecContext(ctx, query, stationArgs(s)...)
	return err
}

// Update overwrites a station. Returns ErrNotFound if it does not exist.
func (r *StationRepository) Update(ctx context.Context, s *models.ChargingStation) error {
	const query = `
		UPDATE charging_stations
		SET name = $2, latitude = $3, longitude = $4, address = $5, city = $6, province = $7,
		    type = $8, total_slots = $9, available_slots = $10, schedule = $11, is_active = $12,
		    operator_id = $13, charging_rate = $14, description = $15, amenities = $16,
		    updated_at = $17
		WHERE id = $1
	`
	args := append(stationArgs(s)[:16], s.UpdatedAt)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// Delete removes a station.
func (r *StationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM charging_stations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// GetByID returns station or ErrNotFound.
func (r *StationRepository) GetByID(ctx context.Context, id string) (*models.ChargingStation, error) {
	var row stationRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+stationColumns+` FROM charging_stations WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s := row.toModel()
	return &s, nil
}

// List returns stations ordered by name, optionally only active ones.
func (r *StationRepository) List(ctx context.Context, activeOnly bool) ([]models.ChargingStation, error) {
	if activeOnly {
		return r.list(ctx, `SELECT `+stationColumns+` FROM charging_stations WHERE is_active = TRUE ORDER BY name`)
	}
	return r.list(ctx, `SELECT `+stationColumns+` FROM charging_stations ORDER BY name`)
}

// ListByOperator returns stations assigned to an operator.
func (r *StationRepository) ListByOperator(ctx context.Context, operatorID string) ([]models.ChargingStation, error) {
	return r.list(ctx, `SELECT `+stationColumns+` FROM charging_stations WHERE operator_id = $1 ORDER BY name`, operatorID)
}

func (r *StationRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.ChargingStation, error) {
	var rows []stationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	stations := make([]models.ChargingStation, 0, len(rows))
	for _, row := range rows {
		stations = append(stations, row.toModel())
	}
	return stations, nil
}

func stationArgs(s *models.ChargingStation) []interface{} {
	return []interface{}{
		s.ID,
		s.Name,
		s.Location.Latitude,
		s.Location.Longitude,
		s.Location.Address,
		s.Location.City,
		s.Location.Province,
		string(s.Type),
		s.TotalSlots,
		s.AvailableSlots,
		s.Schedule,
		s.IsActive,
		s.OperatorID,
		s.ChargingRate,
		s.Description,
		pq.StringArray(s.Amenities),
		s.CreatedAt,
		s.UpdatedAt,
	}
}

func expectOne(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
