package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/services/booking-service/internal/models"
	"xpointconnect/backend/services/booking-service/internal/service"
)

// StationService is the station directory used by StationHandler.
type StationService interface {
	Create(ctx context.Context, in service.StationInput) (*models.ChargingStation, error)
	Get(ctx context.Context, id string) (*models.ChargingStation, error)
	List(ctx context.Context, activeOnly bool) ([]models.ChargingStation, error)
	GetByOperator(ctx context.Context, operatorID string) ([]models.ChargingStation, error)
	Update(ctx context.Context, id string, in service.StationUpdate) (*models.ChargingStation, error)
	UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) (*models.ChargingStation, error)
	Delete(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) (*models.ChargingStation, error)
	ActiveBookings(ctx context.Context, id string) ([]models.Booking, error)
	ActiveCheckIns(ctx context.Context, id string) ([]models.CheckIn, error)
	GetNearby(ctx context.Context, lat, lon, radiusKm float64) ([]models.NearbyStation, error)
}

// StationHandler serves /stations.
type StationHandler struct {
	svc    StationService
	logger *zap.Logger
}

// NewStationHandler builds handler set.
func NewStationHandler(svc StationService, logger *zap.Logger) *StationHandler {
	return &StationHandler{svc: svc, logger: logger}
}

type createStationRequest struct {
	Name         string             `json:"name"`
	Location     models.Location    `json:"location"`
	Type         models.StationType `json:"type"`
	TotalSlots   int                `json:"totalSlots"`
	Schedule     models.Schedule    `json:"schedule"`
	OperatorID   string             `json:"operatorId"`
	ChargingRate float64            `json:"chargingRate"`
	Description  string             `json:"description"`
	Amenities    []string           `json:"amenities"`
}

type updateStationRequest struct {
	Name           optional.Value[string]             `json:"name"`
	Location       optional.Value[models.Location]    `json:"location"`
	Type           optional.Value[models.StationType] `json:"type"`
	TotalSlots     optional.Value[int]                `json:"totalSlots"`
	AvailableSlots optional.Value[int]                `json:"availableSlots"`
	Schedule       optional.Value[models.Schedule]    `json:"schedule"`
	IsActive       optional.Value[bool]               `json:"isActive"`
	OperatorID     optional.Value[string]             `json:"operatorId"`
	ChargingRate   optional.Value[float64]            `json:"chargingRate"`
	Description    optional.Value[string]             `json:"description"`
	Amenities      optional.Value[[]string]           `json:"amenities"`
}

// operatorEditable reports whether only the fields a station operator may touch are present.
func (r updateStationRequest) operatorEditable() bool {
	return !r.Name.Set && !r.Location.Set && !r.Type.Set && !r.TotalSlots.Set && !r.IsActive.Set &&
		!r.OperatorID.Set && !r.ChargingRate.Set && !r.Amenities.Set
}

type scheduleRequest struct {
	Schedule models.Schedule `json:"schedule"`
}

// List handles GET /stations[?active=true].
func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if raw := r.URL.Query().Get("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid active flag")
			return
		}
		activeOnly = parsed
	}
	stations, err := h.svc.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stations)
}

// Get handles GET /stations/{id}.
func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.Context(), pathValue(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

// Nearby handles GET /stations/nearby?lat=&lon=&radiusKm=.
func (h *StationHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "lat is required")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "lon is required")
		return
	}
	radius := service.DefaultNearbyRadiusKm
	if q.Has("radiusKm") {
		radius, err = strconv.ParseFloat(q.Get("radiusKm"), 64)
		if err != nil || radius <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "radiusKm must be a number greater than zero")
			return
		}
	}
	stations, err := h.svc.GetNearby(r.Context(), lat, lon, radius)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stations)
}

// Create handles POST /stations.
func (h *StationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}
	var req createStationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := h.svc.Create(r.Context(), service.StationInput{
		Name:         req.Name,
		Location:     req.Location,
		Type:         req.Type,
		TotalSlots:   req.TotalSlots,
		Schedule:     req.Schedule,
		OperatorID:   req.OperatorID,
		ChargingRate: req.ChargingRate,
		Description:  req.Description,
		Amenities:    req.Amenities,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, st)
}

// Update handles PUT /stations/{id}. Operators may change availableSlots, schedule and
// description of their own stations only.
func (h *StationHandler) Update(w http.ResponseWriter, r *http.Request) {
	stationID := pathValue(r, "id")
	id, ok := h.requireStationAccess(w, r, stationID)
	if !ok {
		return
	}
	var req updateStationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if id.Role == auth.RoleStationOperator && !req.operatorEditable() {
		forbidden(w)
		return
	}
	st, err := h.svc.Update(r.Context(), stationID, service.StationUpdate{
		Name:           req.Name,
		Location:       req.Location,
		Type:           req.Type,
		TotalSlots:     req.TotalSlots,
		AvailableSlots: req.AvailableSlots,
		Schedule:       req.Schedule,
		IsActive:       req.IsActive,
		OperatorID:     req.OperatorID,
		ChargingRate:   req.ChargingRate,
		Description:    req.Description,
		Amenities:      req.Amenities,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

// UpdateSchedule handles PUT /stations/{id}/schedule.
func (h *StationHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	stationID := pathValue(r, "id")
	if _, ok := h.requireStationAccess(w, r, stationID); !ok {
		return
	}
	var req scheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	st, err := h.svc.UpdateSchedule(r.Context(), stationID, req.Schedule)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

// Delete handles DELETE /stations/{id}.
func (h *StationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}
	if err := h.svc.Delete(r.Context(), pathValue(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Deactivate handles POST /stations/{id}/deactivate.
func (h *StationHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if !h.requireManager(w, r) {
		return
	}
	st, err := h.svc.Deactivate(r.Context(), pathValue(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

// ActiveBookings handles GET /stations/{id}/active-bookings.
func (h *StationHandler) ActiveBookings(w http.ResponseWriter, r *http.Request) {
	stationID := pathValue(r, "id")
	if _, ok := h.requireStationAccess(w, r, stationID); !ok {
		return
	}
	bookings, err := h.svc.ActiveBookings(r.Context(), stationID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookings)
}

// CheckIns handles GET /stations/{id}/checkins.
func (h *StationHandler) CheckIns(w http.ResponseWriter, r *http.Request) {
	stationID := pathValue(r, "id")
	if _, ok := h.requireStationAccess(w, r, stationID); !ok {
		return
	}
	checkIns, err := h.svc.ActiveCheckIns(r.Context(), stationID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, checkIns)
}

// ByOperator handles GET /stations/operator/{operatorId}.
func (h *StationHandler) ByOperator(w http.ResponseWriter, r *http.Request) {
	operatorID := pathValue(r, "operatorId")
	id, ok := requireRole(w, r, auth.RoleBackOffice, auth.RoleStationOperator)
	if !ok {
		return
	}
	if id.Role == auth.RoleStationOperator && id.Subject != operatorID {
		forbidden(w)
		return
	}
	stations, err := h.svc.GetByOperator(r.Context(), operatorID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stations)
}

func (h *StationHandler) requireManager(w http.ResponseWriter, r *http.Request) bool {
	id, ok := requireIdentity(w, r)
	if !ok {
		return false
	}
	if !id.Role.CanManageStations() {
		forbidden(w)
		return false
	}
	return true
}

// requireStationAccess admits back-office staff, and operators assigned to the station.
func (h *StationHandler) requireStationAccess(w http.ResponseWriter, r *http.Request, stationID string) (auth.Identity, bool) {
	id, ok := requireRole(w, r, auth.RoleBackOffice, auth.RoleStationOperator)
	if !ok {
		return id, false
	}
	if id.Role == auth.RoleBackOffice {
		return id, true
	}
	st, err := h.svc.Get(r.Context(), stationID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return id, false
	}
	if st.OperatorID != id.Subject {
		forbidden(w)
		return id, false
	}
	return id, true
}
