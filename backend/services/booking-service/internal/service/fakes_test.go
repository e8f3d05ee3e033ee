package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"xpointconnect/backend/services/booking-service/internal/models"
	"xpointconnect/backend/services/booking-service/internal/repository"
)

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	// beforeUpdate runs once before the next Update, to simulate a concurrent writer.
	beforeUpdate func(s *fakeBookingStore)
	updates      int
}

func newFakeBookingStore(bookings ...models.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: map[string]models.Booking{}}
	for _, b := range bookings {
		if b.Version == 0 {
			b.Version = 1
		}
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeBookingStore) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *fakeBookingStore) Update(_ context.Context, b *models.Booking) error {
	if hook := s.beforeUpdate; hook != nil {
		s.beforeUpdate = nil
		hook(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	stored, ok := s.bookings[b.ID]
	if !ok || stored.Version != b.Version {
		return repository.ErrVersionConflict
	}
	b.Version++
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) all(filter func(models.Booking) bool) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.bookings {
		if filter(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out
}

func (s *fakeBookingStore) ListAll(context.Context) ([]models.Booking, error) {
	return s.all(func(models.Booking) bool { return true }), nil
}

func (s *fakeBookingStore) ListByOwner(_ context.Context, nic string) ([]models.Booking, error) {
	return s.all(func(b models.Booking) bool { return b.EVOwnerNIC == nic }), nil
}

func (s *fakeBookingStore) ListByStation(_ context.Context, stationID string) ([]models.Booking, error) {
	return s.all(func(b models.Booking) bool { return b.ChargingStationID == stationID }), nil
}

func (s *fakeBookingStore) ListByStationStatuses(_ context.Context, stationID string, statuses ...models.BookingStatus) ([]models.Booking, error) {
	return s.all(func(b models.Booking) bool {
		return b.ChargingStationID == stationID && hasStatus(b.Status, statuses)
	}), nil
}

func (s *fakeBookingStore) CountByStationStatuses(ctx context.Context, stationID string, statuses ...models.BookingStatus) (int, error) {
	list, _ := s.ListByStationStatuses(ctx, stationID, statuses...)
	return len(list), nil
}

func (s *fakeBookingStore) CountOverlapping(_ context.Context, stationID string, start, end time.Time) (int, error) {
	live := []models.BookingStatus{models.BookingPending, models.BookingApproved, models.BookingCheckedIn}
	return len(s.all(func(b models.Booking) bool {
		return b.ChargingStationID == stationID && hasStatus(b.Status, live) &&
			b.ReservationDateTime.Before(end) && b.EstimatedEnd().After(start)
	})), nil
}

func (s *fakeBookingStore) SummarizeByStatus(context.Context) ([]models.StatusSummary, error) {
	byStatus := map[models.BookingStatus]*models.StatusSummary{}
	for _, b := range s.all(func(models.Booking) bool { return true }) {
		sum, ok := byStatus[b.Status]
		if !ok {
			sum = &models.StatusSummary{Status: b.Status}
			byStatus[b.Status] = sum
		}
		sum.Count++
		sum.Amount += b.TotalAmount
	}
	out := []models.StatusSummary{}
	for _, sum := range byStatus {
		out = append(out, *sum)
	}
	return out, nil
}

func hasStatus(s models.BookingStatus, statuses []models.BookingStatus) bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

type fakeStationStore struct {
	stations map[string]models.ChargingStation
}

func newFakeStationStore(stations ...models.ChargingStation) *fakeStationStore {
	s := &fakeStationStore{stations: map[string]models.ChargingStation{}}
	for _, st := range stations {
		s.stations[st.ID] = st
	}
	return s
}

func (s *fakeStationStore) Create(_ context.Context, st *models.ChargingStation) error {
	s.stations[st.ID] = *st
	return nil
}

func (s *fakeStationStore) GetByID(_ context.Context, id string) (*models.ChargingStation, error) {
	st, ok := s.stations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (s *fakeStationStore) Update(_ context.Context, st *models.ChargingStation) error {
	if _, ok := s.stations[st.ID]; !ok {
		return repository.ErrNotFound
	}
	s.stations[st.ID] = *st
	return nil
}

func (s *fakeStationStore) Delete(_ context.Context, id string) error {
	if _, ok := s.stations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.stations, id)
	return nil
}

func (s *fakeStationStore) List(_ context.Context, activeOnly bool) ([]models.ChargingStation, error) {
	out := []models.ChargingStation{}
	for _, st := range s.stations {
		if !activeOnly || st.IsActive {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeStationStore) ListByOperator(_ context.Context, operatorID string) ([]models.ChargingStation, error) {
	out := []models.ChargingStation{}
	for _, st := range s.stations {
		if st.OperatorID == operatorID {
			out = append(out, st)
		}
	}
	return out, nil
}

type fakeOwners map[string]models.Owner

func (f fakeOwners) GetOwner(_ context.Context, nic string) (*models.Owner, error) {
	o, ok := f[nic]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

type fakeCheckIns struct {
	saved   map[string]models.CheckIn
	deleted []string
	failing bool
}

func newFakeCheckIns() *fakeCheckIns {
	return &fakeCheckIns{saved: map[string]models.CheckIn{}}
}

func (f *fakeCheckIns) Save(_ context.Context, c models.CheckIn) error {
	if f.failing {
		return errors.New("redis down")
	}
	f.saved[c.BookingID] = c
	return nil
}

func (f *fakeCheckIns) Delete(_ context.Context, _, bookingID string) error {
	if f.failing {
		return errors.New("redis down")
	}
	delete(f.saved, bookingID)
	f.deleted = append(f.deleted, bookingID)
	return nil
}

func (f *fakeCheckIns) ListByStation(_ context.Context, stationID string) ([]models.CheckIn, error) {
	out := []models.CheckIn{}
	for _, c := range f.saved {
		if c.StationID == stationID {
			out = append(out, c)
		}
	}
	return out, nil
}
