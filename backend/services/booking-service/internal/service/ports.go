package service

import (
	"context"
	"time"

	"xpointconnect/backend/services/booking-service/internal/models"
)

// BookingStore is the booking persistence used by the services.
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, b *models.Booking) error
	ListAll(ctx context.Context) ([]models.Booking, error)
	ListByOwner(ctx context.Context, nic string) ([]models.Booking, error)
	ListByStation(ctx context.Context, stationID string) ([]models.Booking, error)
	ListByStationStatuses(ctx context.Context, stationID string, statuses ...models.BookingStatus) ([]models.Booking, error)
	CountByStationStatuses(ctx context.Context, stationID string, statuses ...models.BookingStatus) (int, error)
	CountOverlapping(ctx context.Context, stationID string, start, end time.Time) (int, error)
	SummarizeByStatus(ctx context.Context) ([]models.StatusSummary, error)
}

// StationStore is the station persistence used by the services.
type StationStore interface {
	Create(ctx context.Context, s *models.ChargingStation) error
	GetByID(ctx context.Context, id string) (*models.ChargingStation, error)
	Update(ctx context.Context, s *models.ChargingStation) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool) ([]models.ChargingStation, error)
	ListByOperator(ctx context.Context, operatorID string) ([]models.ChargingStation, error)
}

// OwnerDirectory resolves EV owner accounts.
type OwnerDirectory interface {
	GetOwner(ctx context.Context, nic string) (*models.Owner, error)
}

// CheckInCache holds bookings that are currently checked in.
type CheckInCache interface {
	Save(ctx context.Context, checkIn models.CheckIn) error
	Delete(ctx context.Context, stationID, bookingID string) error
	ListByStation(ctx context.Context, stationID string) ([]models.CheckIn, error)
}
