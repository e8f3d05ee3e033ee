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

const bookingSelect = `
	SELECT b.id, b.ev_owner_nic,
	       COALESCE(TRIM(o.first_name || ' ' || o.last_name), '') AS ev_owner_name,
	       b.charging_station_id,
	       COALESCE(s.name, '') AS charging_station_name,
	       b.reservation_date_time, b.booking_date, b.duration_minutes, b.status, b.total_amount,
	       b.qr_code, b.check_in_time, b.check_out_time, b.cancellation_reason, b.cancelled_at,
	       b.operator_notes, b.version, b.created_at, b.updated_at
	FROM bookings b
	LEFT JOIN ev_owners o ON o.nic = b.ev_owner_nic
	LEFT JOIN charging_stations s ON s.id = b.charging_station_id
`

// BookingRepository persists bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository returns repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	const query = `
		INSERT INTO bookings (
			id, ev_owner_nic, charging_station_id, reservation_date_time, booking_date,
			duration_minutes, status, total_amount, qr_code, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.EVOwnerNIC,
		b.ChargingStationID,
		b.ReservationDateTime,
		b.BookingDate,
		b.DurationMinutes,
		b.Status,
		b.TotalAmount,
		b.QRCode,
		b.Version,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

// GetByID returns booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.GetContext(ctx, &b, bookingSelect+` WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Update writes every mutable field if the stored version still equals b.Version, then
// advances b.Version. A stale version yields ErrVersionConflict.
func (r *BookingRepository) Update(ctx context.Context, b *models.Booking) error {
	const query = `
		UPDATE bookings
		SET reservation_date_time = $3,
		    duration_minutes = $4,
		    status = $5,
		    total_amount = $6,
		    qr_code = $7,
		    check_in_time = $8,
		    check_out_time = $9,
		    cancellation_reason = $10,
		    cancelled_at = $11,
		    operator_notes = $12,
		    updated_at = $13,
		    version = version + 1
		WHERE id = $1 AND version = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.Version,
		b.ReservationDateTime,
		b.DurationMinutes,
		b.Status,
		b.TotalAmount,
		b.QRCode,
		b.CheckInTime,
		b.CheckOutTime,
		b.CancellationReason,
		b.CancelledAt,
		b.OperatorNotes,
		b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	b.Version++
	return nil
}

// ListAll returns every booking, newest first.
func (r *BookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	return r.list(ctx, bookingSelect+` ORDER BY b.booking_date DESC`)
}

// ListByOwner returns an owner's bookings, newest first.
func (r *BookingRepository) ListByOwner(ctx context.Context, nic string) ([]models.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.ev_owner_nic = $1 ORDER BY b.booking_date DESC`, nic)
}

// ListByStation returns a station's bookings ordered by reservation time.
func (r *BookingRepository) ListByStation(ctx context.Context, stationID string) ([]models.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE b.charging_station_id = $1 ORDER BY b.reservation_date_time ASC`, stationID)
}

// ListByStationStatuses returns a station's bookings in one of statuses.
func (r *BookingRepository) ListByStationStatuses(ctx context.Context, stationID string, statuses ...models.BookingStatus) ([]models.Booking, error) {
	return r.list(ctx,
		bookingSelect+` WHERE b.charging_station_id = $1 AND b.status = ANY($2) ORDER BY b.reservation_date_time ASC`,
		stationID, statusArray(statuses),
	)
}

// CountByStationStatuses counts a station's bookings in one of statuses.
func (r *BookingRepository) CountByStationStatuses(ctx context.Context, stationID string, statuses ...models.BookingStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE charging_station_id = $1 AND status = ANY($2)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, stationID, statusArray(statuses)); err != nil {
		return 0, err
	}
	return count, nil
}

// CountOverlapping counts live bookings at a station whose interval intersects [start, end).
func (r *BookingRepository) CountOverlapping(ctx context.Context, stationID string, start, end time.Time) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM bookings
		WHERE charging_station_id = $1
		  AND status = ANY($2)
		  AND reservation_date_time < $4
		  AND reservation_date_time + make_interval(mins => duration_minutes) > $3
	`
	live := statusArray([]models.BookingStatus{
		models.BookingPending,
		models.BookingApproved,
		models.BookingCheckedIn,
	})
	var count int
	if err := r.db.GetContext(ctx, &count, query, stationID, live, start, end); err != nil {
		return 0, err
	}
	return count, nil
}

// SummarizeByStatus returns the count and summed amount per status.
func (r *BookingRepository) SummarizeByStatus(ctx context.Context) ([]models.StatusSummary, error) {
	const query = `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount
		FROM bookings
		GROUP BY status
	`
	var summaries []models.StatusSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}
	return bookings, nil
}

func statusArray(statuses []models.BookingStatus) pq.StringArray {
	out := make(pq.StringArray, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
