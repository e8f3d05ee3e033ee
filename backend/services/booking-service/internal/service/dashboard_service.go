package service

import (
	"context"
	"sort"
	"time"

	"xpointconnect/backend/services/booking-service/internal/geo"
	"xpointconnect/backend/services/booking-service/internal/models"
)

// NearbyFinder searches stations around a coordinate.
type NearbyFinder interface {
	GetNearby(ctx context.Context, lat, lon, radiusKm float64) ([]models.NearbyStation, error)
}

// DashboardDefaults is the search area used when an owner dashboard request has no location.
type DashboardDefaults struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Coordinates is a caller supplied position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// OwnerDashboard summarises an EV owner's bookings.
type OwnerDashboard struct {
	PendingReservations        int                    `json:"pendingReservations"`
	ApprovedFutureReservations int                    `json:"approvedFutureReservations"`
	CompletedThisMonth         int                    `json:"completedThisMonth"`
	MonthlySpend               float64                `json:"monthlySpend"`
	NearbyStations             []models.NearbyStation `json:"nearbyStations"`
}

// BookingStats counts bookings per status across the system.
type BookingStats struct {
	TotalBookings int     `json:"totalBookings"`
	Pending       int     `json:"pending"`
	Approved      int     `json:"approved"`
	CheckedIn     int     `json:"checkedIn"`
	Completed     int     `json:"completed"`
	Cancelled     int     `json:"cancelled"`
	NoShow        int     `json:"noShow"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// DashboardService aggregates booking data for dashboards.
type DashboardService struct {
	bookings BookingStore
	stations NearbyFinder
	defaults DashboardDefaults
	now      func() time.Time
}

// NewDashboardService builds service.
func NewDashboardService(bookings BookingStore, stations NearbyFinder, defaults DashboardDefaults) *DashboardService {
	if defaults.RadiusKm <= 0 {
		defaults.RadiusKm = DefaultNearbyRadiusKm
	}
	return &DashboardService{
		bookings: bookings,
		stations: stations,
		defaults: defaults,
		now:      time.Now,
	}
}

// OwnerDashboard summarises nic's bookings and lists stations near loc, or near the configured
// default when loc is nil.
func (s *DashboardService) OwnerDashboard(ctx context.Context, nic string, loc *Coordinates) (*OwnerDashboard, error) {
	bookings, err := s.bookings.ListByOwner(ctx, nic)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	year, month, _ := now.Date()

	dash := &OwnerDashboard{}
	var spend float64
	for _, b := range bookings {
		switch b.Status {
		case models.BookingPending:
			dash.PendingReservations++
		case models.BookingApproved:
			if b.ReservationDateTime.After(now) {
				dash.ApprovedFutureReservations++
			}
		case models.BookingCompleted:
			if b.CheckOutTime == nil {
				continue
			}
			y, m, _ := b.CheckOutTime.UTC().Date()
			if y == year && m == month {
				dash.CompletedThisMonth++
				spend += b.TotalAmount
			}
		}
	}
	dash.MonthlySpend = geo.Round2(spend)

	lat, lon := s.defaults.Latitude, s.defaults.Longitude
	if loc != nil {
		lat, lon = loc.Latitude, loc.Longitude
	}
	nearby, err := s.stations.GetNearby(ctx, lat, lon, s.defaults.RadiusKm)
	if err != nil {
		return nil, err
	}
	dash.NearbyStations = nearby
	return dash, nil
}

// SystemBookingStats counts bookings per status and sums revenue over Completed bookings.
func (s *DashboardService) SystemBookingStats(ctx context.Context) (*BookingStats, error) {
	summaries, err := s.bookings.SummarizeByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &BookingStats{}
	for _, sum := range summaries {
		stats.TotalBookings += sum.Count
		switch sum.Status {
		case models.BookingPending:
			stats.Pending = sum.Count
		case models.BookingApproved:
			stats.Approved = sum.Count
		case models.BookingCheckedIn:
			stats.CheckedIn = sum.Count
		case models.BookingCompleted:
			stats.Completed = sum.Count
			stats.TotalRevenue = geo.Round2(sum.Amount)
		case models.BookingCancelled:
			stats.Cancelled = sum.Count
		case models.BookingNoShow:
			stats.NoShow = sum.Count
		}
	}
	return stats, nil
}

// Upcoming returns nic's Approved and CheckedIn bookings that start in the future, soonest first.
func (s *DashboardService) Upcoming(ctx context.Context, nic string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByOwner(ctx, nic)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	upcoming := make([]models.Booking, 0)
	for _, b := range bookings {
		if (b.Status == models.BookingApproved || b.Status == models.BookingCheckedIn) && b.ReservationDateTime.After(now) {
			upcoming = append(upcoming, b)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ReservationDateTime.Before(upcoming[j].ReservationDateTime)
	})
	return upcoming, nil
}

// History returns nic's Completed and Cancelled bookings, latest reservation first.
func (s *DashboardService) History(ctx context.Context, nic string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByOwner(ctx, nic)
	if err != nil {
		return nil, err
	}
	history := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.Status == models.BookingCompleted || b.Status == models.BookingCancelled {
			history = append(history, b)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].ReservationDateTime.After(history[j].ReservationDateTime)
	})
	return history, nil
}
