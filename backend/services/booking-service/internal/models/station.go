package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// StationType is the charger current type.
type StationType string

const (
	StationAC StationType = "AC"
	StationDC StationType = "DC"
)

// Valid reports whether t is a known type.
func (t StationType) Valid() bool {
	return t == StationAC || t == StationDC
}

// Location places a station.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Province  string  `json:"province"`
}

// TimeSlot is one entry of a station's operating schedule.
type TimeSlot struct {
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	AvailableSlots int       `json:"availableSlots"`
}

// Schedule is stored as a JSONB array.
type Schedule []TimeSlot

// Value implements driver.Valuer.
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]TimeSlot(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (s *Schedule) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = Schedule{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("schedule: unsupported source %T", src)
	}
	var slots []TimeSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return errors.New("schedule: invalid json")
	}
	*s = slots
	return nil
}

// ChargingStation is a bookable charging location.
type ChargingStation struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Location       Location    `json:"location"`
	Type           StationType `json:"type"`
	TotalSlots     int         `json:"totalSlots"`
	AvailableSlots int         `json:"availableSlots"`
	Schedule       Schedule    `json:"schedule"`
	IsActive       bool        `json:"isActive"`
	OperatorID     string      `json:"operatorId"`
	ChargingRate   float64     `json:"chargingRate"`
	Description    string      `json:"description"`
	Amenities      []string    `json:"amenities"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// NearbyStation is a station annotated with its distance from a search point.
type NearbyStation struct {
	ChargingStation
	Distance float64 `json:"distance"`
}

// CheckIn is a booking currently charging at a station.
type CheckIn struct {
	BookingID   string    `json:"bookingId"`
	StationID   string    `json:"stationId"`
	EVOwnerNIC  string    `json:"evOwnerNic"`
	CheckInTime time.Time `json:"checkInTime"`
	ExpectedEnd time.Time `json:"expectedEnd"`
}
