package httpserver

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"xpointconnect/backend/services/api-gateway/internal/http/handlers"
	"xpointconnect/backend/services/api-gateway/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Routes    []Route
	Upstreams map[string]handlers.Forwarder
	Cache     *middleware.ResponseCache
	Health    http.HandlerFunc
	Metrics   http.Handler
	Logger    *zap.Logger
}

// NewRouter registers every route against its upstream. It fails when a route names an
// unknown upstream.
func NewRouter(deps RouterDeps) (http.Handler, error) {
	mux := http.NewServeMux()
	if deps.Health != nil {
		mux.HandleFunc("GET /health", deps.Health)
	}
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	for _, route := range deps.Routes {
		upstream, ok := deps.Upstreams[route.Upstream]
		if !ok {
			return nil, fmt.Errorf("router: route %q uses unknown upstream %q", route.Pattern, route.Upstream)
		}
		var h http.Handler = handlers.NewProxyHandler(upstream, route.Allow, deps.Logger)
		if deps.Cache != nil {
			if route.Cache {
				h = deps.Cache.Cached(h)
			}
			if route.Invalidate {
				h = deps.Cache.InvalidateOnWrite(h)
			}
		}
		mux.Handle(route.Pattern, h)
	}
	return mux, nil
}
