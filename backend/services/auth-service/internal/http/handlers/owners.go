package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/libs/optional"
	"xpointconnect/backend/services/auth-service/internal/models"
	"xpointconnect/backend/services/auth-service/internal/service"
)

// OwnerService is the EV owner account service used by OwnerHandler.
type OwnerService interface {
	Register(ctx context.Context, in service.RegisterOwnerInput) (*models.EVOwner, error)
	Login(ctx context.Context, nic, password string) (*models.LoginResult, error)
	Get(ctx context.Context, nic string) (*models.EVOwner, error)
	List(ctx context.Context) ([]models.EVOwner, error)
	ReactivationRequests(ctx context.Context) ([]models.EVOwner, error)
	Update(ctx context.Context, nic string, in service.UpdateOwnerInput) (*models.EVOwner, error)
	Delete(ctx context.Context, nic string) error
	Deactivate(ctx context.Context, nic string) error
	Activate(ctx context.Context, nic string) error
}

// OwnerHandler serves /auth/evowners and /evowners.
type OwnerHandler struct {
	svc    OwnerService
	logger *zap.Logger
}

// NewOwnerHandler builds handler set.
func NewOwnerHandler(svc OwnerService, logger *zap.Logger) *OwnerHandler {
	return &OwnerHandler{svc: svc, logger: logger}
}

type registerOwnerRequest struct {
	NIC         string `json:"nic"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Password    string `json:"password"`
}

type ownerLoginRequest struct {
	NIC      string `json:"nic"`
	Password string `json:"password"`
}

type updateOwnerRequest struct {
	FirstName            optional.Value[string] `json:"firstName"`
	LastName             optional.Value[string] `json:"lastName"`
	Email                optional.Value[string] `json:"email"`
	PhoneNumber          optional.Value[string] `json:"phoneNumber"`
	Address              optional.Value[string] `json:"address"`
	Password             optional.Value[string] `json:"password"`
	IsActive             optional.Value[bool]   `json:"isActive"`
	RequiresReactivation optional.Value[bool]   `json:"requiresReactivation"`
}

// Register handles POST /auth/evowners/register.
func (h *OwnerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerOwnerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	owner, err := h.svc.Register(r.Context(), service.RegisterOwnerInput{
		NIC:         req.NIC,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Password:    req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, owner)
}

// Login handles POST /auth/evowners/login.
func (h *OwnerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req ownerLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.NIC) == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "nic and password are required")
		return
	}
	res, err := h.svc.Login(r.Context(), req.NIC, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// List handles GET /evowners.
func (h *OwnerHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	owners, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, owners)
}

// ReactivationRequests handles GET /evowners/reactivation-requests.
func (h *OwnerHandler) ReactivationRequests(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	owners, err := h.svc.ReactivationRequests(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, owners)
}

// Get handles GET /evowners/{nic}. Owners may only read themselves.
func (h *OwnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	nic := pathValue(r, "nic")
	id, ok := requireRole(w, r, auth.RoleEVOwner, auth.RoleStationOperator, auth.RoleBackOffice)
	if !ok {
		return
	}
	if !id.Role.IsStaff() && !id.Owns(nic) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}
	owner, err := h.svc.Get(r.Context(), nic)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, owner)
}

// Update handles PUT /evowners/{nic}. Owners may edit their own profile but not its
// activation flags.
func (h *OwnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	nic := pathValue(r, "nic")
	id, ok := h.requireSelfOrBackOffice(w, r, nic)
	if !ok {
		return
	}
	var req updateOwnerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if id.Role == auth.RoleEVOwner && (req.IsActive.Set || req.RequiresReactivation.Set) {
		httpx.WriteError(w, http.StatusForbidden, "activation flags are managed by back-office")
		return
	}

	owner, err := h.svc.Update(r.Context(), nic, service.UpdateOwnerInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		PhoneNumber:          req.PhoneNumber,
		Address:              req.Address,
		Password:             req.Password,
		IsActive:             req.IsActive,
		RequiresReactivation: req.RequiresReactivation,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, owner)
}

// Delete handles DELETE /evowners/{nic}.
func (h *OwnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), pathValue(r, "nic")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Deactivate handles POST /evowners/{nic}/deactivate.
func (h *OwnerHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	nic := pathValue(r, "nic")
	if _, ok := h.requireSelfOrBackOffice(w, r, nic); !ok {
		return
	}
	if err := h.svc.Deactivate(r.Context(), nic); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /evowners/{nic}/activate.
func (h *OwnerHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	if err := h.svc.Activate(r.Context(), pathValue(r, "nic")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OwnerHandler) requireSelfOrBackOffice(w http.ResponseWriter, r *http.Request, nic string) (auth.Identity, bool) {
	id, ok := requireRole(w, r, auth.RoleEVOwner, auth.RoleBackOffice)
	if !ok {
		return id, false
	}
	if id.Role == auth.RoleEVOwner && !id.Owns(nic) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
		return id, false
	}
	return id, true
}
