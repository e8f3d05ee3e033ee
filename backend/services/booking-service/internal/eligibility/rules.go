// Package eligibility holds the pure time-window, duration, modification and pricing rules
// that gate booking operations.
package eligibility

import (
	"errors"
	"fmt"
	"math"
	"time"

	"xpointconnect/backend/services/booking-service/internal/models"
)

const (
	MinDuration  = 15
	MaxDuration  = 480
	MaxAdvance   = 7 * 24 * time.Hour
	ModifyCutoff = 12 * time.Hour
)

var (
	ErrInvalidDuration = errors.New("duration must be between 15 and 480 minutes")
	ErrOutsideWindow   = errors.New("reservation must be between now and 7 days ahead")
)

// ValidateDuration checks minutes against [MinDuration, MaxDuration].
func ValidateDuration(minutes int) error {
	if minutes < MinDuration || minutes > MaxDuration {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, minutes)
	}
	return nil
}

// ValidateReservationWindow requires now <= t <= now+MaxAdvance.
func ValidateReservationWindow(now, t time.Time) error {
	if t.Before(now) || t.After(now.Add(MaxAdvance)) {
		return ErrOutsideWindow
	}
	return nil
}

// CanModify reports whether a booking may still be updated or cancelled: it must not be
// completed or cancelled, and its reservation must be at least ModifyCutoff away.
func CanModify(status models.BookingStatus, reservation, now time.Time) bool {
	if status == models.BookingCompleted || status == models.BookingCancelled {
		return false
	}
	return reservation.Sub(now) >= ModifyCutoff
}

// TotalAmount prices a booking at rate per hour, rounded half away from zero to two decimals.
func TotalAmount(rate float64, minutes int) float64 {
	return math.Round(rate*float64(minutes)/60*100) / 100
}

// CanTransition is the booking state machine.
func CanTransition(from, to models.BookingStatus) bool {
	switch from {
	case models.BookingPending:
		return to == models.BookingApproved || to == models.BookingCancelled
	case models.BookingApproved:
		return to == models.BookingCheckedIn || to == models.BookingCancelled
	case models.BookingCheckedIn:
		return to == models.BookingCompleted || to == models.BookingCancelled
	default:
		return false
	}
}
