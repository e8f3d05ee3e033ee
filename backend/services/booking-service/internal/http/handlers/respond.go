package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/services/booking-service/internal/service"
)

// writeServiceError maps service sentinels to status codes. Anything unrecognised is logged
// and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedQR), errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotEligible):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// requireIdentity returns the caller identity or answers 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing identity")
		return auth.Identity{}, false
	}
	return id, true
}

// requireRole answers 401/403 unless the caller has one of roles.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...auth.Role) (auth.Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return id, false
	}
	if !id.Role.In(roles...) {
		forbidden(w)
		return id, false
	}
	return id, true
}

// requireSelfOrStaff lets an EV owner through for their own nic and staff for any nic.
func requireSelfOrStaff(w http.ResponseWriter, r *http.Request, nic string) (auth.Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return id, false
	}
	if !id.Role.IsStaff() && !id.Owns(nic) {
		forbidden(w)
		return id, false
	}
	return id, true
}

func forbidden(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden, "forbidden")
}

func pathValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}

// decodeOptional decodes a JSON body that may be omitted.
func decodeOptional(r *http.Request, dst interface{}) error {
	if err := httpx.DecodeJSON(r, dst); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		return err
	}
	return nil
}
