package models

import "time"

// BookingStatus is the wire value of a booking's lifecycle state.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingApproved  BookingStatus = "Approved"
	BookingCheckedIn BookingStatus = "CheckedIn"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
	// BookingNoShow is accepted on the wire and stored, but no operation produces it.
	BookingNoShow BookingStatus = "NoShow"
)

// AllBookingStatuses lists every status in lifecycle order.
var AllBookingStatuses = []BookingStatus{
	BookingPending,
	BookingApproved,
	BookingCheckedIn,
	BookingCompleted,
	BookingCancelled,
	BookingNoShow,
}

// ParseBookingStatus validates a wire value.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	for _, s := range AllBookingStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// Booking is a reservation of a charging slot.
type Booking struct {
	ID                  string        `db:"id" json:"id"`
	EVOwnerNIC          string        `db:"ev_owner_nic" json:"evOwnerNic"`
	EVOwnerName         string        `db:"ev_owner_name" json:"evOwnerName"`
	ChargingStationID   string        `db:"charging_station_id" json:"chargingStationId"`
	ChargingStationName string        `db:"charging_station_name" json:"chargingStationName"`
	ReservationDateTime time.Time     `db:"reservation_date_time" json:"reservationDateTime"`
	BookingDate         time.Time     `db:"booking_date" json:"bookingDate"`
	DurationMinutes     int           `db:"duration_minutes" json:"durationMinutes"`
	Status              BookingStatus `db:"status" json:"status"`
	TotalAmount         float64       `db:"total_amount" json:"totalAmount"`
	QRCode              string        `db:"qr_code" json:"qrCode,omitempty"`
	CheckInTime         *time.Time    `db:"check_in_time" json:"checkInTime,omitempty"`
	CheckOutTime        *time.Time    `db:"check_out_time" json:"checkOutTime,omitempty"`
	CancellationReason  *string       `db:"cancellation_reason" json:"cancellationReason,omitempty"`
	CancelledAt         *time.Time    `db:"cancelled_at" json:"cancelledAt,omitempty"`
	OperatorNotes       *string       `db:"operator_notes" json:"operatorNotes,omitempty"`
	Version             int64         `db:"version" json:"version"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
}

// EstimatedEnd is the reservation start plus its duration.
func (b *Booking) EstimatedEnd() time.Time {
	return b.ReservationDateTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// BookingPreview is a priced booking that has not been stored.
type BookingPreview struct {
	ChargingStationID   string    `json:"chargingStationId"`
	ChargingStationName string    `json:"chargingStationName"`
	ReservationDateTime time.Time `json:"reservationDateTime"`
	DurationMinutes     int       `json:"durationMinutes"`
	TotalAmount         float64   `json:"totalAmount"`
	EstimatedEndTime    time.Time `json:"estimatedEndTime"`
}

// StatusSummary is the count and summed amount of bookings in one status.
type StatusSummary struct {
	Status BookingStatus `db:"status"`
	Count  int           `db:"count"`
	Amount float64       `db:"amount"`
}

// Owner is the subset of an EV owner account the booking engine reads.
type Owner struct {
	NIC      string `db:"nic" json:"nic"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"isActive"`
}
