package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/services/api-gateway/internal/clients"
)

const (
	apiPrefix    = "/api"
	maxBodyBytes = 1 << 20
)

// Forwarder sends a request to an internal service.
type Forwarder interface {
	Name() string
	Forward(ctx context.Context, in clients.Request) (*clients.Response, error)
}

// Policy decides whether a role may call a route. A nil Policy makes the route public.
type Policy func(auth.Role) bool

// AnyOf admits exactly the listed roles.
func AnyOf(roles ...auth.Role) Policy {
	return func(r auth.Role) bool {
		return r.In(roles...)
	}
}

// NewProxyHandler gates the request on allow and forwards it to upstream with the /api prefix
// removed. The verified identity, if any, travels as X-User-ID / X-User-Role.
func NewProxyHandler(upstream Forwarder, allow Policy, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, authenticated := auth.IdentityFromContext(r.Context())
		if allow != nil {
			if !authenticated {
				httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !allow(id.Role) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
		}

		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "invalid body")
				return
			}
		}

		req := clients.Request{
			Method:      r.Method,
			Path:        strings.TrimPrefix(r.URL.EscapedPath(), apiPrefix),
			RawQuery:    r.URL.RawQuery,
			Body:        body,
			ContentType: r.Header.Get("Content-Type"),
		}
		if authenticated {
			req.Identity = &id
		}

		resp, err := upstream.Forward(r.Context(), req)
		if err != nil {
			logger.Error("upstream call failed",
				zap.String("upstream", upstream.Name()),
				zap.String("path", req.Path),
				zap.Error(err),
			)
			httpx.WriteError(w, http.StatusBadGateway, upstream.Name()+" service unavailable")
			return
		}
		if resp.ContentType != "" {
			w.Header().Set("Content-Type", resp.ContentType)
		}
		w.WriteHeader(resp.Status)
		if len(resp.Body) > 0 {
			_, _ = w.Write(resp.Body)
		}
	}
}
