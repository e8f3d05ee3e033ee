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

// UserService is the staff account service used by UserHandler.
type UserService interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	Create(ctx context.Context, in service.CreateUserInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, in service.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler serves /auth/login and /auth/users.
type UserHandler struct {
	svc    UserService
	logger *zap.Logger
}

// NewUserHandler builds handler set.
func NewUserHandler(svc UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

type updateUserRequest struct {
	Username optional.Value[string] `json:"username"`
	Email    optional.Value[string] `json:"email"`
	Password optional.Value[string] `json:"password"`
	IsActive optional.Value[bool]   `json:"isActive"`
}

// Login handles POST /auth/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

// Create handles POST /auth/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Create(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, user)
}

// List handles GET /auth/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	users, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// Get handles GET /auth/users/{id}. Staff may read their own account.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, auth.RoleBackOffice, auth.RoleStationOperator)
	if !ok {
		return
	}
	userID := pathValue(r, "id")
	if id.Role != auth.RoleBackOffice && id.Subject != userID {
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	user, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

// Update handles PUT /auth/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, auth.RoleBackOffice); !ok {
		return
	}
	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Update(r.Context(), pathValue(r, "id"), service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /auth/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, auth.RoleBackOffice)
	if !ok {
		return
	}
	target := pathValue(r, "id")
	if id.Subject == target {
		httpx.WriteError(w, http.StatusConflict, "cannot delete own account")
		return
	}
	if err := h.svc.Delete(r.Context(), target); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
