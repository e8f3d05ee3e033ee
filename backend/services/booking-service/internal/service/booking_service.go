package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/services/booking-service/internal/eligibility"
	"xpointconnect/backend/services/booking-service/internal/models"
	"xpointconnect/backend/services/booking-service/internal/qrcode"
	"xpointconnect/backend/services/booking-service/internal/repository"
)

const maxWriteAttempts = 3

// BookingService runs the booking state machine.
type BookingService struct {
	bookings            BookingStore
	stations            StationStore
	owners              OwnerDirectory
	checkins            CheckInCache
	metrics             *Metrics
	logger              *zap.Logger
	enforceSlotCapacity bool
	now                 func() time.Time
}

// CreateBookingInput describes a reservation request.
type CreateBookingInput struct {
	EVOwnerNIC          string
	ChargingStationID   string
	ReservationDateTime time.Time
	DurationMinutes     int
}

// UpdateBookingInput carries the fields an update supplies; absent fields are left unchanged.
type UpdateBookingInput struct {
	ReservationDateTime optional.Value[time.Time]
	DurationMinutes     optional.Value[int]
	Status              optional.Value[models.BookingStatus]
	OperatorNotes       optional.Value[string]
}

// NewBookingService builds service. When enforceSlotCapacity is set, Create refuses a
// reservation whose interval already overlaps totalSlots live bookings at the station.
func NewBookingService(
	bookings BookingStore,
	stations StationStore,
	owners OwnerDirectory,
	checkins CheckInCache,
	metrics *Metrics,
	logger *zap.Logger,
	enforceSlotCapacity bool,
) *BookingService {
	return &BookingService{
		bookings:            bookings,
		stations:            stations,
		owners:              owners,
		checkins:            checkins,
		metrics:             metrics,
		logger:              logger,
		enforceSlotCapacity: enforceSlotCapacity,
		now:                 time.Now,
	}
}

// Create stores a Pending booking priced from the station's rate.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	now := s.now().UTC()
	q, err := s.quote(ctx, in, now)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:                  uuid.NewString(),
		EVOwnerNIC:          q.owner.NIC,
		EVOwnerName:         q.owner.Name,
		ChargingStationID:   q.station.ID,
		ChargingStationName: q.station.Name,
		ReservationDateTime: q.reservation,
		BookingDate:         now,
		DurationMinutes:     in.DurationMinutes,
		Status:              models.BookingPending,
		TotalAmount:         q.amount,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	s.metrics.transition(models.BookingPending)
	s.logger.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("station_id", b.ChargingStationID),
		zap.Time("reservation", b.ReservationDateTime),
	)
	return b, nil
}

// Preview validates and prices a reservation without storing it.
func (s *BookingService) Preview(ctx context.Context, in CreateBookingInput) (*models.BookingPreview, error) {
	q, err := s.quote(ctx, in, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &models.BookingPreview{
		ChargingStationID:   q.station.ID,
		ChargingStationName: q.station.Name,
		ReservationDateTime: q.reservation,
		DurationMinutes:     in.DurationMinutes,
		TotalAmount:         q.amount,
		EstimatedEndTime:    q.reservation.Add(time.Duration(in.DurationMinutes) * time.Minute),
	}, nil
}

type bookingQuote struct {
	station     *models.ChargingStation
	owner       *models.Owner
	reservation time.Time
	amount      float64
}

func (s *BookingService) quote(ctx context.Context, in CreateBookingInput, now time.Time) (*bookingQuote, error) {
	nic := strings.TrimSpace(in.EVOwnerNIC)
	stationID := strings.TrimSpace(in.ChargingStationID)
	if nic == "" {
		return nil, validationf("evOwnerNic is required")
	}
	if stationID == "" {
		return nil, validationf("chargingStationId is required")
	}
	if err := eligibility.ValidateDuration(in.DurationMinutes); err != nil {
		return nil, validationf("%v", err)
	}
	reservation := in.ReservationDateTime.UTC()
	if err := eligibility.ValidateReservationWindow(now, reservation); err != nil {
		return nil, validationf("%v", err)
	}

	station, err := s.stations.GetByID(ctx, stationID)
	if err != nil {
		return nil, notFound(err, "station", stationID)
	}
	owner, err := s.owners.GetOwner(ctx, nic)
	if err != nil {
		return nil, notFound(err, "ev owner", nic)
	}
	if !station.IsActive {
		return nil, notEligiblef("station %s is not active", station.ID)
	}
	if !owner.IsActive {
		return nil, notEligiblef("ev owner %s is not active", owner.NIC)
	}

	if s.enforceSlotCapacity {
		end := reservation.Add(time.Duration(in.DurationMinutes) * time.Minute)
		overlapping, err := s.bookings.CountOverlapping(ctx, station.ID, reservation, end)
		if err != nil {
			return nil, err
		}
		if overlapping >= station.TotalSlots {
			return nil, notEligiblef("station %s has no free slot for the requested time", station.ID)
		}
	}

	return &bookingQuote{
		station:     station,
		owner:       owner,
		reservation: reservation,
		amount:      eligibility.TotalAmount(station.ChargingRate, in.DurationMinutes),
	}, nil
}

// Get returns a booking.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

// ListAll returns every booking, newest first.
func (s *BookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	return s.bookings.ListAll(ctx)
}

// ListByOwner returns an owner's bookings, newest first.
func (s *BookingService) ListByOwner(ctx context.Context, nic string) ([]models.Booking, error) {
	return s.bookings.ListByOwner(ctx, nic)
}

// ListByStation returns a station's bookings.
func (s *BookingService) ListByStation(ctx context.Context, stationID string) ([]models.Booking, error) {
	return s.bookings.ListByStation(ctx, stationID)
}

// CanModify reports whether the stored booking may still be updated or cancelled.
func (s *BookingService) CanModify(ctx context.Context, id string) (bool, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return eligibility.CanModify(b.Status, b.ReservationDateTime, s.now().UTC()), nil
}

// Update applies the supplied fields. The booking must be modifiable at its stored
// reservation time; a status change follows the state machine with the same side effects
// as the dedicated transition.
func (s *BookingService) Update(ctx context.Context, id string, in UpdateBookingInput) (*models.Booking, error) {
	return s.mutate(ctx, id, func(b *models.Booking, now time.Time) error {
		if !eligibility.CanModify(b.Status, b.ReservationDateTime, now) {
			return notEligiblef("booking %s can no longer be modified", b.ID)
		}
		if t, ok := in.ReservationDateTime.Get(); ok {
			t = t.UTC()
			if err := eligibility.ValidateReservationWindow(now, t); err != nil {
				return validationf("%v", err)
			}
			b.ReservationDateTime = t
		}
		if minutes, ok := in.DurationMinutes.Get(); ok {
			if err := eligibility.ValidateDuration(minutes); err != nil {
				return validationf("%v", err)
			}
			station, err := s.stations.GetByID(ctx, b.ChargingStationID)
			if err != nil {
				return notFound(err, "station", b.ChargingStationID)
			}
			b.DurationMinutes = minutes
			b.TotalAmount = eligibility.TotalAmount(station.ChargingRate, minutes)
		}
		if notes, ok := in.OperatorNotes.Get(); ok {
			b.OperatorNotes = optionalText(notes)
		}
		if to, ok := in.Status.Get(); ok && to != b.Status {
			if _, known := models.ParseBookingStatus(string(to)); !known {
				return validationf("unknown status %q", to)
			}
			return s.applyTransition(b, to, now)
		}
		return nil
	})
}

// Cancel moves a modifiable booking to Cancelled.
func (s *BookingService) Cancel(ctx context.Context, id, reason string) (*models.Booking, error) {
	return s.mutate(ctx, id, func(b *models.Booking, now time.Time) error {
		if !eligibility.CanModify(b.Status, b.ReservationDateTime, now) {
			return notEligiblef("booking %s can no longer be cancelled", b.ID)
		}
		if err := s.applyTransition(b, models.BookingCancelled, now); err != nil {
			return err
		}
		b.CancellationReason = optionalText(reason)
		return nil
	})
}

// Approve moves a Pending booking to Approved and issues its QR token.
func (s *BookingService) Approve(ctx context.Context, id string) (*models.Booking, error) {
	return s.mutate(ctx, id, func(b *models.Booking, now time.Time) error {
		return s.applyTransition(b, models.BookingApproved, now)
	})
}

// CheckIn moves an Approved booking to CheckedIn.
func (s *BookingService) CheckIn(ctx context.Context, id, notes string) (*models.Booking, error) {
	return s.mutate(ctx, id, func(b *models.Booking, now time.Time) error {
		if err := s.applyTransition(b, models.BookingCheckedIn, now); err != nil {
			return err
		}
		if text := optionalText(notes); text != nil {
			b.OperatorNotes = text
		}
		return nil
	})
}

// CheckOut moves a CheckedIn booking to Completed.
func (s *BookingService) CheckOut(ctx context.Context, id, notes string) (*models.Booking, error) {
	return s.mutate(ctx, id, func(b *models.Booking, now time.Time) error {
		if err := s.applyTransition(b, models.BookingCompleted, now); err != nil {
			return err
		}
		if text := optionalText(notes); text != nil {
			b.OperatorNotes = text
		}
		return nil
	})
}

// ResolveByQRToken returns the booking a QR token refers to.
func (s *BookingService) ResolveByQRToken(ctx context.Context, token string) (*models.Booking, error) {
	payload, err := qrcode.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedQR, err)
	}
	return s.Get(ctx, payload.BookingID)
}

// mutate loads the booking, applies fn and writes it back guarded by its version. A lost race
// re-reads the booking and re-runs fn against the fresh state.
func (s *BookingService) mutate(ctx context.Context, id string, fn func(b *models.Booking, now time.Time) error) (*models.Booking, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		b, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		from := b.Status
		now := s.now().UTC()
		if err := fn(b, now); err != nil {
			return nil, err
		}
		b.UpdatedAt = now

		err = s.bookings.Update(ctx, b)
		if err == nil {
			s.afterWrite(ctx, b, from)
			return b, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		s.metrics.conflict()
		s.logger.Debug("booking version conflict", zap.String("booking_id", id), zap.Int("attempt", attempt))
	}
	return nil, notEligiblef("booking %s is being modified concurrently", id)
}

func (s *BookingService) applyTransition(b *models.Booking, to models.BookingStatus, now time.Time) error {
	if !eligibility.CanTransition(b.Status, to) {
		return notEligiblef("booking %s cannot move from %s to %s", b.ID, b.Status, to)
	}
	switch to {
	case models.BookingApproved:
		token, err := qrcode.Encode(qrcode.Payload{
			BookingID:         b.ID,
			EVOwnerNIC:        b.EVOwnerNIC,
			ChargingStationID: b.ChargingStationID,
			GeneratedAt:       now,
		})
		if err != nil {
			return err
		}
		b.QRCode = token
	case models.BookingCheckedIn:
		at := now
		b.CheckInTime = &at
	case models.BookingCompleted:
		at := now
		b.CheckOutTime = &at
	case models.BookingCancelled:
		at := now
		b.CancelledAt = &at
		b.QRCode = ""
	}
	b.Status = to
	return nil
}

func (s *BookingService) afterWrite(ctx context.Context, b *models.Booking, from models.BookingStatus) {
	if b.Status == from {
		return
	}
	s.metrics.transition(b.Status)
	s.logger.Info("booking status changed",
		zap.String("booking_id", b.ID),
		zap.String("from", string(from)),
		zap.String("to", string(b.Status)),
	)
	if s.checkins == nil {
		return
	}

	switch {
	case b.Status == models.BookingCheckedIn:
		checkIn := models.CheckIn{
			BookingID:   b.ID,
			StationID:   b.ChargingStationID,
			EVOwnerNIC:  b.EVOwnerNIC,
			CheckInTime: *b.CheckInTime,
			ExpectedEnd: b.CheckInTime.Add(time.Duration(b.DurationMinutes) * time.Minute),
		}
		if err := s.checkins.Save(ctx, checkIn); err != nil {
			s.metrics.cacheError("save")
			s.logger.Warn("failed to cache check-in", zap.String("booking_id", b.ID), zap.Error(err))
		}
	case from == models.BookingCheckedIn:
		if err := s.checkins.Delete(ctx, b.ChargingStationID, b.ID); err != nil {
			s.metrics.cacheError("delete")
			s.logger.Warn("failed to drop cached check-in", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
}

func optionalText(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
