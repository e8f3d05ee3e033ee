package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Headers used by the gateway to forward a verified identity to internal services.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// ErrNoIdentity is returned when a request carries no usable identity.
var ErrNoIdentity = errors.New("auth: identity missing")

// Identity is a verified principal: Subject is the NIC for EV owners and the user id for staff.
type Identity struct {
	Subject string
	Role    Role
	Name    string
}

// Owns reports whether the identity is the EV owner identified by nic.
func (i Identity) Owns(nic string) bool {
	return i.Role == RoleEVOwner && i.Subject == nic
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores identity on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// SetHeaders writes the identity onto an outgoing request.
func SetHeaders(h http.Header, id Identity) {
	h.Set(HeaderUserID, id.Subject)
	h.Set(HeaderUserRole, string(id.Role))
}

// IdentityFromHeaders reads an identity forwarded by the gateway.
func IdentityFromHeaders(h http.Header) (Identity, error) {
	subject := strings.TrimSpace(h.Get(HeaderUserID))
	if subject == "" {
		return Identity{}, ErrNoIdentity
	}
	role, err := ParseRole(strings.TrimSpace(h.Get(HeaderUserRole)))
	if err != nil {
		return Identity{}, err
	}
	return Identity{Subject: subject, Role: role}, nil
}

// FromHeadersMiddleware attaches the identity forwarded by the gateway to the request
// context. Requests without a valid identity pass through anonymously.
func FromHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := IdentityFromHeaders(r.Header); err == nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
