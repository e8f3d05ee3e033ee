package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/services/booking-service/internal/models"
	"xpointconnect/backend/services/booking-service/internal/service"
)

// DashboardService is the aggregation used by DashboardHandler.
type DashboardService interface {
	OwnerDashboard(ctx context.Context, nic string, loc *service.Coordinates) (*service.OwnerDashboard, error)
	SystemBookingStats(ctx context.Context) (*service.BookingStats, error)
	Upcoming(ctx context.Context, nic string) ([]models.Booking, error)
	History(ctx context.Context, nic string) ([]models.Booking, error)
}

// DashboardHandler serves the dashboard views under /bookings.
type DashboardHandler struct {
	svc    DashboardService
	logger *zap.Logger
}

// NewDashboardHandler builds handler set.
func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// Owner handles GET /bookings/dashboard/{nic}[?lat=&lon=].
func (h *DashboardHandler) Owner(w http.ResponseWriter, r *http.Request) {
	nic := pathValue(r, "nic")
	if _, ok := requireSelfOrStaff(w, r, nic); !ok {
		return
	}

	var loc *service.Coordinates
	q := r.URL.Query()
	if q.Has("lat") || q.Has("lon") {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
		if errLat != nil || errLon != nil {
			httpx.WriteError(w, http.StatusBadRequest, "lat and lon must both be numbers")
			return
		}
		loc = &service.Coordinates{Latitude: lat, Longitude: lon}
	}

	dash, err := h.svc.OwnerDashboard(r.Context(), nic, loc)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dash)
}

// Stats handles GET /bookings/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	stats, err := h.svc.SystemBookingStats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// Upcoming handles GET /bookings/upcoming/{nic}.
func (h *DashboardHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	nic := pathValue(r, "nic")
	if _, ok := requireSelfOrStaff(w, r, nic); !ok {
		return
	}
	bookings, err := h.svc.Upcoming(r.Context(), nic)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookings)
}

// History handles GET /bookings/history/{nic}.
func (h *DashboardHandler) History(w http.ResponseWriter, r *http.Request) {
	nic := pathValue(r, "nic")
	if _, ok := requireSelfOrStaff(w, r, nic); !ok {
		return
	}
	bookings, err := h.svc.History(r.Context(), nic)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookings)
}
