package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xpointconnect/backend/services/booking-service/internal/models"
)

func newTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

var bookingColumns = []string{
	"id", "ev_owner_nic", "ev_owner_name", "charging_station_id", "charging_station_name",
	"reservation_date_time", "booking_date", "duration_minutes", "status", "total_amount",
	"qr_code", "check_in_time", "check_out_time", "cancellation_reason", "cancelled_at",
	"operator_notes", "version", "created_at", "updated_at",
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)
	at := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings b`)).
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(
			"b-1", "123456789V", "Nimal Perera", "s-1", "Colombo City Center",
			at, at.Add(-time.Hour), 90, "Approved", 75.0,
			"token", nil, nil, nil, nil,
			"bring cable", int64(3), at, at,
		))

	b, err := repo.GetByID(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingApproved, b.Status)
	assert.Equal(t, "Nimal Perera", b.EVOwnerName)
	assert.Equal(t, "Colombo City Center", b.ChargingStationName)
	assert.Equal(t, int64(3), b.Version)
	assert.Nil(t, b.CheckInTime)
	require.NotNil(t, b.OperatorNotes)
	assert.Equal(t, "bring cable", *b.OperatorNotes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings b`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepository_UpdateVersionCheck(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)
	b := &models.Booking{ID: "b-1", Version: 2, Status: models.BookingApproved}

	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND version = $2`)).
		WithArgs("b-1", int64(2), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), b))
	assert.Equal(t, int64(3), b.Version)

	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND version = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), b)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, int64(3), b.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_CountOverlapping(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)
	start := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`make_interval(mins => duration_minutes)`)).
		WithArgs("s-1", sqlmock.AnyArg(), start, start.Add(time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountOverlapping(context.Background(), "s-1", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBookingRepository_SummarizeByStatus(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY status`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "amount"}).
			AddRow("Completed", 2, 150.5).
			AddRow("Pending", 1, 40.0))

	got, err := repo.SummarizeByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.StatusSummary{Status: models.BookingCompleted, Count: 2, Amount: 150.5}, got[0])
}

var stationColumnNames = []string{
	"id", "name", "latitude", "longitude", "address", "city", "province", "type", "total_slots",
	"available_slots", "schedule", "is_active", "operator_id", "charging_rate", "description",
	"amenities", "created_at", "updated_at",
}

func TestStationRepository_GetByID(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewStationRepository(db)
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM charging_stations WHERE id = $1`)).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(stationColumnNames).AddRow(
			"s-1", "Colombo City Center - AC Charging", 6.9271, 79.8612, "Main Street", "Colombo", "Western",
			"AC", 4, 4,
			[]byte(`[{"startTime":"2025-06-01T06:00:00Z","endTime":"2025-06-01T22:00:00Z","availableSlots":4}]`),
			true, "op-1", 50.0, "", "{WiFi,Parking}", at, at,
		))

	s, err := repo.GetByID(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, models.StationAC, s.Type)
	assert.Equal(t, 6.9271, s.Location.Latitude)
	assert.Equal(t, []string{"WiFi", "Parking"}, s.Amenities)
	require.Len(t, s.Schedule, 1)
	assert.Equal(t, 4, s.Schedule[0].AvailableSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStationRepository_UpdateAndDeleteMissing(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewStationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE charging_stations`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &models.ChargingStation{ID: "nope", Type: models.StationDC})
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM charging_stations WHERE id = $1`)).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "nope"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerRepository_GetOwner(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewOwnerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM ev_owners`)).
		WithArgs("123456789V").
		WillReturnRows(sqlmock.NewRows([]string{"nic", "name", "is_active"}).AddRow("123456789V", "Nimal Perera", true))

	owner, err := repo.GetOwner(context.Background(), "123456789V")
	require.NoError(t, err)
	assert.Equal(t, "Nimal Perera", owner.Name)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM ev_owners`)).
		WithArgs("000000000V").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetOwner(context.Background(), "000000000V")
	assert.ErrorIs(t, err, ErrNotFound)
}
