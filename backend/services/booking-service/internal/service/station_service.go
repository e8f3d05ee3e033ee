package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/services/booking-service/internal/geo"
	"xpointconnect/backend/services/booking-service/internal/models"
)

const (
	// DefaultNearbyRadiusKm applies when a nearby search does not name a radius.
	DefaultNearbyRadiusKm = 10.0

	maxSlots        = 100
	maxChargingRate = 1000.0
)

var activeBookingStatuses = []models.BookingStatus{models.BookingApproved, models.BookingCheckedIn}

// StationService manages the station directory.
type StationService struct {
	stations StationStore
	bookings BookingStore
	checkins CheckInCache
	logger   *zap.Logger
	now      func() time.Time
}

// StationInput describes a new station.
type StationInput struct {
	Name         string
	Location     models.Location
	Type         models.StationType
	TotalSlots   int
	Schedule     models.Schedule
	OperatorID   string
	ChargingRate float64
	Description  string
	Amenities    []string
}

// StationUpdate carries the fields an update supplies; absent fields are left unchanged.
type StationUpdate struct {
	Name           optional.Value[string]
	Location       optional.Value[models.Location]
	Type           optional.Value[models.StationType]
	TotalSlots     optional.Value[int]
	AvailableSlots optional.Value[int]
	Schedule       optional.Value[models.Schedule]
	IsActive       optional.Value[bool]
	OperatorID     optional.Value[string]
	ChargingRate   optional.Value[float64]
	Description    optional.Value[string]
	Amenities      optional.Value[[]string]
}

// NewStationService builds service.
func NewStationService(stations StationStore, bookings BookingStore, checkins CheckInCache, logger *zap.Logger) *StationService {
	return &StationService{
		stations: stations,
		bookings: bookings,
		checkins: checkins,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores an active station with every slot available.
func (s *StationService) Create(ctx context.Context, in StationInput) (*models.ChargingStation, error) {
	now := s.now().UTC()
	station := &models.ChargingStation{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Location:       in.Location,
		Type:           in.Type,
		TotalSlots:     in.TotalSlots,
		AvailableSlots: in.TotalSlots,
		Schedule:       normalizeSchedule(in.Schedule),
		IsActive:       true,
		OperatorID:     strings.TrimSpace(in.OperatorID),
		ChargingRate:   in.ChargingRate,
		Description:    strings.TrimSpace(in.Description),
		Amenities:      normalizeAmenities(in.Amenities),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validateStation(station); err != nil {
		return nil, err
	}
	if err := s.stations.Create(ctx, station); err != nil {
		return nil, err
	}
	s.logger.Info("station created", zap.String("station_id", station.ID), zap.String("name", station.Name))
	return station, nil
}

// Get returns a station.
func (s *StationService) Get(ctx context.Context, id string) (*models.ChargingStation, error) {
	station, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "station", id)
	}
	return station, nil
}

// List returns all stations, or only active ones.
func (s *StationService) List(ctx context.Context, activeOnly bool) ([]models.ChargingStation, error) {
	return s.stations.List(ctx, activeOnly)
}

// GetByOperator returns the stations assigned to an operator.
func (s *StationService) GetByOperator(ctx context.Context, operatorID string) ([]models.ChargingStation, error) {
	return s.stations.ListByOperator(ctx, operatorID)
}

// Update merges the supplied fields into the stored station and validates the result.
func (s *StationService) Update(ctx context.Context, id string, in StationUpdate) (*models.ChargingStation, error) {
	station, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok := in.Name.Get(); ok {
		station.Name = strings.TrimSpace(v)
	}
	if v, ok := in.Location.Get(); ok {
		station.Location = v
	}
	if v, ok := in.Type.Get(); ok {
		station.Type = v
	}
	if v, ok := in.TotalSlots.Get(); ok {
		station.TotalSlots = v
	}
	if v, ok := in.AvailableSlots.Get(); ok {
		station.AvailableSlots = v
	}
	if v, ok := in.Schedule.Get(); ok {
		station.Schedule = normalizeSchedule(v)
	}
	if v, ok := in.OperatorID.Get(); ok {
		station.OperatorID = strings.TrimSpace(v)
	}
	if v, ok := in.ChargingRate.Get(); ok {
		station.ChargingRate = v
	}
	if v, ok := in.Description.Get(); ok {
		station.Description = strings.TrimSpace(v)
	}
	if v, ok := in.Amenities.Get(); ok {
		station.Amenities = normalizeAmenities(v)
	}
	if err := validateStation(station); err != nil {
		return nil, err
	}

	if v, ok := in.IsActive.Get(); ok {
		if !v && station.IsActive {
			active, err := s.HasActiveBookings(ctx, id)
			if err != nil {
				return nil, err
			}
			if active {
				return nil, notEligiblef("station %s has active bookings", id)
			}
		}
		station.IsActive = v
	}

	station.UpdatedAt = s.now().UTC()
	if err := s.stations.Update(ctx, station); err != nil {
		return nil, notFound(err, "station", id)
	}
	return station, nil
}

// UpdateSchedule replaces a station's schedule.
func (s *StationService) UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) (*models.ChargingStation, error) {
	return s.Update(ctx, id, StationUpdate{Schedule: optional.Of(schedule)})
}

// Delete removes a station.
func (s *StationService) Delete(ctx context.Context, id string) error {
	if err := s.stations.Delete(ctx, id); err != nil {
		return notFound(err, "station", id)
	}
	s.logger.Info("station deleted", zap.String("station_id", id))
	return nil
}

// Deactivate marks a station inactive unless it still has active bookings.
func (s *StationService) Deactivate(ctx context.Context, id string) (*models.ChargingStation, error) {
	station, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	active, err := s.HasActiveBookings(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, notEligiblef("station %s has active bookings", id)
	}
	station.IsActive = false
	station.UpdatedAt = s.now().UTC()
	if err := s.stations.Update(ctx, station); err != nil {
		return nil, notFound(err, "station", id)
	}
	s.logger.Info("station deactivated", zap.String("station_id", id))
	return station, nil
}

// HasActiveBookings reports whether the station has Approved or CheckedIn bookings.
func (s *StationService) HasActiveBookings(ctx context.Context, id string) (bool, error) {
	count, err := s.bookings.CountByStationStatuses(ctx, id, activeBookingStatuses...)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ActiveBookings returns the station's Approved and CheckedIn bookings.
func (s *StationService) ActiveBookings(ctx context.Context, id string) ([]models.Booking, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.bookings.ListByStationStatuses(ctx, id, activeBookingStatuses...)
}

// ActiveCheckIns returns the station's cached check-ins.
func (s *StationService) ActiveCheckIns(ctx context.Context, id string) ([]models.CheckIn, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.checkins == nil {
		return []models.CheckIn{}, nil
	}
	return s.checkins.ListByStation(ctx, id)
}

// GetNearby returns active stations within radiusKm of (lat, lon), nearest first.
func (s *StationService) GetNearby(ctx context.Context, lat, lon, radiusKm float64) ([]models.NearbyStation, error) {
	if !geo.ValidCoordinate(lat, lon) {
		return nil, validationf("coordinates out of range")
	}
	if radiusKm <= 0 {
		return nil, validationf("radius must be greater than zero")
	}

	stations, err := s.stations.List(ctx, true)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		station  models.ChargingStation
		distance float64
	}
	var candidates []candidate
	for _, st := range stations {
		d := geo.DistanceKm(lat, lon, st.Location.Latitude, st.Location.Longitude)
		if d <= radiusKm {
			candidates = append(candidates, candidate{station: st, distance: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	nearby := make([]models.NearbyStation, 0, len(candidates))
	for _, c := range candidates {
		nearby = append(nearby, models.NearbyStation{ChargingStation: c.station, Distance: geo.Round2(c.distance)})
	}
	return nearby, nil
}

func validateStation(s *models.ChargingStation) error {
	if s.Name == "" {
		return validationf("name is required")
	}
	if !geo.ValidCoordinate(s.Location.Latitude, s.Location.Longitude) {
		return validationf("coordinates out of range")
	}
	if !s.Type.Valid() {
		return validationf("type must be AC or DC")
	}
	if s.TotalSlots < 1 || s.TotalSlots > maxSlots {
		return validationf("totalSlots must be between 1 and %d", maxSlots)
	}
	if s.AvailableSlots < 0 || s.AvailableSlots > s.TotalSlots {
		return validationf("availableSlots must be between 0 and totalSlots")
	}
	if s.ChargingRate <= 0 || s.ChargingRate > maxChargingRate {
		return validationf("chargingRate must be greater than 0 and at most %.0f", maxChargingRate)
	}
	for i, slot := range s.Schedule {
		if !slot.EndTime.After(slot.StartTime) {
			return validationf("schedule[%d]: endTime must be after startTime", i)
		}
		if slot.AvailableSlots < 0 || slot.AvailableSlots > maxSlots {
			return validationf("schedule[%d]: availableSlots must be between 0 and %d", i, maxSlots)
		}
	}
	return nil
}

func normalizeSchedule(schedule models.Schedule) models.Schedule {
	if schedule == nil {
		return models.Schedule{}
	}
	out := make(models.Schedule, len(schedule))
	for i, slot := range schedule {
		out[i] = models.TimeSlot{
			StartTime:      slot.StartTime.UTC(),
			EndTime:        slot.EndTime.UTC(),
			AvailableSlots: slot.AvailableSlots,
		}
	}
	return out
}

func normalizeAmenities(amenities []string) []string {
	out := make([]string, 0, len(amenities))
	for _, a := range amenities {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
