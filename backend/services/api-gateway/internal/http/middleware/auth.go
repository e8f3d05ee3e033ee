package middleware

import (
	"net/http"
	"strings"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (auth.Identity, error)
}

// Authenticate validates an optional bearer token and stores the identity on the request
// context. A request without an Authorization header continues anonymously; a malformed or
// invalid token is rejected. Forwarded identity headers sent by clients are always dropped.
func Authenticate(tokens TokenValidator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(auth.HeaderUserID)
			r.Header.Del(auth.HeaderUserRole)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			id, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
