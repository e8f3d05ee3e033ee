package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/password"
)

// SeedUser is a staff account created when missing.
type SeedUser struct {
	Username string
	Email    string
	Password string
	Role     auth.Role
}

// SeedStation is a sample charging station. Stations are only seeded into an empty table.
type SeedStation struct {
	Name         string
	Latitude     float64
	Longitude    float64
	Address      string
	City         string
	Province     string
	Type         string
	TotalSlots   int
	ChargingRate float64
	Description  string
	Amenities    []string
}

// SeedResult counts the rows a run created.
type SeedResult struct {
	UsersCreated    int
	StationsCreated int
}

const stationOperatorUsername = "operator1"

// DefaultUsers returns the back-office admin and the sample station operator.
func DefaultUsers(adminPassword, operatorPassword string) []SeedUser {
	return []SeedUser{
		{Username: "admin", Email: "admin@xpointconnect.com", Password: adminPassword, Role: auth.RoleBackOffice},
		{Username: stationOperatorUsername, Email: "operator1@xpointconnect.com", Password: operatorPassword, Role: auth.RoleStationOperator},
	}
}

// SampleStations returns the demo stations around Colombo.
func SampleStations() []SeedStation {
	return []SeedStation{
		{
			Name: "Colombo City Center - AC Charging", Latitude: 6.9271, Longitude: 79.8612,
			Address: "No. 137, Sir Chittampalam A. Gardiner Mawatha, Colombo 02", City: "Colombo", Province: "Western",
			Type: "AC", TotalSlots: 4, ChargingRate: 50,
			Description: "AC charging station located in the heart of Colombo city",
			Amenities:   []string{"Free WiFi", "Parking", "Restroom", "Cafe nearby"},
		},
		{
			Name: "Independence Square - DC Fast Charging", Latitude: 6.9022, Longitude: 79.8607,
			Address: "Independence Avenue, Colombo 07", City: "Colombo", Province: "Western",
			Type: "DC", TotalSlots: 6, ChargingRate: 120,
			Description: "DC fast charging station near Independence Square",
			Amenities:   []string{"24/7 Access", "Security", "Park nearby"},
		},
		{
			Name: "Galle Face Green - AC Charging", Latitude: 6.9214, Longitude: 79.8448,
			Address: "Galle Face Green, Colombo 03", City: "Colombo", Province: "Western",
			Type: "AC", TotalSlots: 3, ChargingRate: 45,
			Description: "Scenic charging location near Galle Face Green",
			Amenities:   []string{"Ocean View", "Food Courts", "Walking Area"},
		},
		{
			Name: "Bambalapitiya Junction - Mixed Charging", Latitude: 6.8905, Longitude: 79.8565,
			Address: "Galle Road, Bambalapitiya, Colombo 04", City: "Colombo", Province: "Western",
			Type: "DC", TotalSlots: 8, ChargingRate: 100,
			Description: "High capacity charging station at Bambalapitiya Junction",
			Amenities:   []string{"Shopping Mall", "Restaurants", "24/7 Security"},
		},
		{
			Name: "Nugegoda Town - AC Charging", Latitude: 6.8714, Longitude: 79.8883,
			Address: "High Level Road, Nugegoda", City: "Nugegoda", Province: "Western",
			Type: "AC", TotalSlots: 5, ChargingRate: 40,
			Description: "Convenient charging station in Nugegoda town center",
			Amenities:   []string{"Public Transport Access", "Banks nearby", "Shopping"},
		},
	}
}

// Seeder writes default data. Running it twice creates nothing the second time.
type Seeder struct {
	db     *sqlx.DB
	hasher password.Hasher
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewSeeder(db *sqlx.DB, hasher password.Hasher, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		db:     db,
		hasher: hasher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

// Seed creates missing users, then fills an empty station table. Stations are assigned to
// the sample operator account.
func (s *Seeder) Seed(ctx context.Context, users []SeedUser, stations []SeedStation) (SeedResult, error) {
	var res SeedResult

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("seed: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range users {
		created, err := s.seedUser(ctx, tx, u)
		if err != nil {
			return res, err
		}
		if created {
			res.UsersCreated++
			s.logger.Info("seeded user", zap.String("username", u.Username), zap.String("role", string(u.Role)))
		}
	}

	var existing int
	if err := tx.GetContext(ctx, &existing, `SELECT COUNT(*) FROM charging_stations`); err != nil {
		return res, fmt.Errorf("seed: count stations: %w", err)
	}
	if existing == 0 && len(stations) > 0 {
		var operatorID string
		err := tx.GetContext(ctx, &operatorID, `SELECT id FROM users WHERE username = $1`, stationOperatorUsername)
		if err != nil {
			return res, fmt.Errorf("seed: look up %s: %w", stationOperatorUsername, err)
		}
		for _, st := range stations {
			if err := s.seedStation(ctx, tx, st, operatorID); err != nil {
				return res, err
			}
			res.StationsCreated++
		}
		s.logger.Info("seeded charging stations", zap.Int("count", res.StationsCreated))
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("seed: commit: %w", err)
	}
	return res, nil
}

func (s *Seeder) seedUser(ctx context.Context, tx *sqlx.Tx, u SeedUser) (bool, error) {
	hash, err := s.hasher.Hash(u.Password)
	if err != nil {
		return false, fmt.Errorf("seed: hash password for %s: %w", u.Username, err)
	}
	now := s.now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (username) DO NOTHING`,
		s.newID(), u.Username, u.Email, hash, string(u.Role), now,
	)
	if err != nil {
		return false, fmt.Errorf("seed: insert user %s: %w", u.Username, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Seeder) seedStation(ctx context.Context, tx *sqlx.Tx, st SeedStation, operatorID string) error {
	now := s.now()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO charging_stations (
		    id, name, latitude, longitude, address, city, province, type,
		    total_slots, available_slots, is_active, operator_id, charging_rate,
		    description, amenities, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, TRUE, $10, $11, $12, $13, $14, $14)`,
		s.newID(), st.Name, st.Latitude, st.Longitude, st.Address, st.City, st.Province, st.Type,
		st.TotalSlots, operatorID, st.ChargingRate, st.Description, pq.StringArray(st.Amenities), now,
	)
	if err != nil {
		return fmt.Errorf("seed: insert station %q: %w", st.Name, err)
	}
	return nil
}
