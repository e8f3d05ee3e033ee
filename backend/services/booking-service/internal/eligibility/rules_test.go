package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"xpointconnect/backend/services/booking-service/internal/models"
)

var now = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func TestValidateDuration(t *testing.T) {
	assert.NoError(t, ValidateDuration(15))
	assert.NoError(t, ValidateDuration(480))
	assert.ErrorIs(t, ValidateDuration(14), ErrInvalidDuration)
	assert.ErrorIs(t, ValidateDuration(481), ErrInvalidDuration)
	assert.ErrorIs(t, ValidateDuration(0), ErrInvalidDuration)
}

func TestValidateReservationWindow(t *testing.T) {
	assert.NoError(t, ValidateReservationWindow(now, now))
	assert.NoError(t, ValidateReservationWindow(now, now.Add(MaxAdvance)))
	assert.ErrorIs(t, ValidateReservationWindow(now, now.Add(-time.Second)), ErrOutsideWindow)
	assert.ErrorIs(t, ValidateReservationWindow(now, now.Add(MaxAdvance+time.Second)), ErrOutsideWindow)
}

func TestCanModify(t *testing.T) {
	tests := []struct {
		name   string
		status models.BookingStatus
		until  time.Duration
		want   bool
	}{
		{"exactly twelve hours", models.BookingPending, 12 * time.Hour, true},
		{"one second short", models.BookingPending, 12*time.Hour - time.Second, false},
		{"approved far ahead", models.BookingApproved, 48 * time.Hour, true},
		{"checked in far ahead", models.BookingCheckedIn, 48 * time.Hour, true},
		{"completed", models.BookingCompleted, 48 * time.Hour, false},
		{"cancelled", models.BookingCancelled, 48 * time.Hour, false},
		{"in the past", models.BookingApproved, -time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModify(tt.status, now.Add(tt.until), now))
		})
	}
}

func TestTotalAmount(t *testing.T) {
	assert.Equal(t, 50.0, TotalAmount(33.33, 90))
	assert.Equal(t, 75.0, TotalAmount(50, 90))
	assert.Equal(t, 67.5, TotalAmount(45, 90))
	assert.Equal(t, 12.35, TotalAmount(12.345, 60))
	assert.Equal(t, 960.0, TotalAmount(120, 480))
}

func TestCanTransition(t *testing.T) {
	allowed := map[models.BookingStatus][]models.BookingStatus{
		models.BookingPending:   {models.BookingApproved, models.BookingCancelled},
		models.BookingApproved:  {models.BookingCheckedIn, models.BookingCancelled},
		models.BookingCheckedIn: {models.BookingCompleted, models.BookingCancelled},
	}
	for _, from := range models.AllBookingStatuses {
		for _, to := range models.AllBookingStatuses {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
