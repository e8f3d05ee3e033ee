package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/services/booking-service/internal/models"
	"xpointconnect/backend/services/booking-service/internal/service"
)

// BookingService is the booking lifecycle used by BookingHandler.
type BookingService interface {
	Create(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error)
	Preview(ctx context.Context, in service.CreateBookingInput) (*models.BookingPreview, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	ListByOwner(ctx context.Context, nic string) ([]models.Booking, error)
	ListByStation(ctx context.Context, stationID string) ([]models.Booking, error)
	CanModify(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, in service.UpdateBookingInput) (*models.Booking, error)
	Cancel(ctx context.Context, id, reason string) (*models.Booking, error)
	Approve(ctx context.Context, id string) (*models.Booking, error)
	CheckIn(ctx context.Context, id, notes string) (*models.Booking, error)
	CheckOut(ctx context.Context, id, notes string) (*models.Booking, error)
	ResolveByQRToken(ctx context.Context, token string) (*models.Booking, error)
}

// BookingHandler serves /bookings.
type BookingHandler struct {
	svc    BookingService
	logger *zap.Logger
}

// NewBookingHandler builds handler set.
func NewBookingHandler(svc BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

type createBookingRequest struct {
	EVOwnerNIC          string    `json:"evOwnerNic"`
	ChargingStationID   string    `json:"chargingStationId"`
	ReservationDateTime time.Time `json:"reservationDateTime"`
	DurationMinutes     int       `json:"durationMinutes"`
}

type updateBookingRequest struct {
	ReservationDateTime optional.Value[time.Time]            `json:"reservationDateTime"`
	DurationMinutes     optional.Value[int]                  `json:"durationMinutes"`
	Status              optional.Value[models.BookingStatus] `json:"status"`
	OperatorNotes       optional.Value[string]               `json:"operatorNotes"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type notesRequest struct {
	OperatorNotes string `json:"operatorNotes"`
}

type scanRequest struct {
	QRCode string `json:"qrCode"`
}

// List handles GET /bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice, auth.RoleStationOperator); !ok {
		return
	}
	bookings, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookings)
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

// Preview handles POST /bookings/preview.
func (h *BookingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Preview(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// decodeCreate reads a create request. EV owners always book for themselves; back-office
// staff book on behalf of the owner named in the body.
func (h *BookingHandler) decodeCreate(w http.ResponseWriter, r *http.Request) (service.CreateBookingInput, bool) {
	id, ok := requireRole(w, r, auth.RoleEVOwner, auth.RoleBackOffice)
	if !ok {
		return service.CreateBookingInput{}, false
	}
	var req createBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return service.CreateBookingInput{}, false
	}
	nic := strings.TrimSpace(req.EVOwnerNIC)
	if id.Role == auth.RoleEVOwner {
		if nic != "" && nic != id.Subject {
			forbidden(w)
			return service.CreateBookingInput{}, false
		}
		nic = id.Subject
	}
	return service.CreateBookingInput{
		EVOwnerNIC:          nic,
		ChargingStationID:   req.ChargingStationID,
		ReservationDateTime: req.ReservationDateTime,
		DurationMinutes:     req.DurationMinutes,
	}, true
}

// Get handles GET /bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadAccessible(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

// Update handles PUT /bookings/{id}. EV owners may only reschedule or resize.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadAccessible(w, r)
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, _ := auth.IdentityFromContext(r.Context())
	if (req.Status.Set || req.OperatorNotes.Set) && !id.Role.CanEditBookingStatus() {
		forbidden(w)
		return
	}
	if req.Status.Set {
		if _, known := models.ParseBookingStatus(string(req.Status.V)); !known {
			httpx.WriteError(w, http.StatusBadRequest, "unknown status")
			return
		}
	}

	updated, err := h.svc.Update(r.Context(), b.ID, service.UpdateBookingInput{
		ReservationDateTime: req.ReservationDateTime,
		DurationMinutes:     req.DurationMinutes,
		Status:              req.Status,
		OperatorNotes:       req.OperatorNotes,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

// CanModify handles GET /bookings/{id}/can-modify.
func (h *BookingHandler) CanModify(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadAccessible(w, r)
	if !ok {
		return
	}
	allowed, err := h.svc.CanModify(r.Context(), b.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"canModify": allowed})
}

// Cancel handles POST /bookings/{id}/cancel.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	b, ok := h.loadAccessible(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if err := decodeOptional(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(w)(h.svc.Cancel(r.Context(), b.ID, req.Reason))
}

// Approve handles POST /bookings/{id}/approve.
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !id.Role.CanApproveBookings() {
		forbidden(w)
		return
	}
	h.respond(w)(h.svc.Approve(r.Context(), pathValue(r, "id")))
}

// CheckIn handles POST /bookings/{id}/checkin.
func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	notes, ok := h.operatorNotes(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.CheckIn(r.Context(), pathValue(r, "id"), notes))
}

// CheckOut handles POST /bookings/{id}/checkout.
func (h *BookingHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	notes, ok := h.operatorNotes(w, r)
	if !ok {
		return
	}
	h.respond(w)(h.svc.CheckOut(r.Context(), pathValue(r, "id"), notes))
}

// ScanQR handles POST /bookings/scan-qr.
func (h *BookingHandler) ScanQR(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !id.Role.CanOperateChargers() {
		forbidden(w)
		return
	}
	var req scanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.respond(w)(h.svc.ResolveByQRToken(r.Context(), req.QRCode))
}

// ListByOwner handles GET /bookings/owner/{nic}.
func (h *BookingHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	nic := pathValue(r, "nic")
	if _, ok := requireSelfOrStaff(w, r, nic); !ok {
		return
	}
	bookings, err := h.svc.ListByOwner(r.Context(), nic)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookings)
}

// ListByStation handles GET /bookings/station/{stationId}.
func (h *BookingHandler) ListByStation(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice, auth.RoleStationOperator); !ok {
		return
	}
	bookings, err := h.svc.ListByStation(r.Context(), pathValue(r, "stationId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) operatorNotes(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return "", false
	}
	if !id.Role.CanOperateChargers() {
		forbidden(w)
		return "", false
	}
	var req notesRequest
	if err := decodeOptional(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid json")
		return "", false
	}
	return req.OperatorNotes, true
}

// loadAccessible fetches the booking named in the path if the caller may see it.
func (h *BookingHandler) loadAccessible(w http.ResponseWriter, r *http.Request) (*models.Booking, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return nil, false
	}
	b, err := h.svc.Get(r.Context(), pathValue(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return nil, false
	}
	if !id.Role.IsStaff() && !id.Owns(b.EVOwnerNIC) {
		forbidden(w)
		return nil, false
	}
	return b, true
}

func (h *BookingHandler) respond(w http.ResponseWriter) func(*models.Booking, error) {
	return func(b *models.Booking, err error) {
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, b)
	}
}
