package httpserver

import (
	"net/http"

	"xpointconnect/backend/services/auth-service/internal/http/handlers"
)

// Routes aggregates handlers for HTTP server.
type Routes struct {
	Users   *handlers.UserHandler
	Owners  *handlers.OwnerHandler
	Health  http.HandlerFunc
	Metrics http.Handler
}

// NewRouter wires all HTTP routes.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Health != nil {
		mux.HandleFunc("GET /health", routes.Health)
	}
	if routes.Metrics != nil {
		mux.Handle("GET /metrics", routes.Metrics)
	}

	if u := routes.Users; u != nil {
		mux.HandleFunc("POST /auth/login", u.Login)
		mux.HandleFunc("GET /auth/users", u.List)
		mux.HandleFunc("POST /auth/users", u.Create)
		mux.HandleFunc("GET /auth/users/{id}", u.Get)
		mux.HandleFunc("PUT /auth/users/{id}", u.Update)
		mux.HandleFunc("DELETE /auth/users/{id}", u.Delete)
	}

	if o := routes.Owners; o != nil {
		mux.HandleFunc("POST /auth/evowners/register", o.Register)
		mux.HandleFunc("POST /auth/evowners/login", o.Login)
		mux.HandleFunc("GET /evowners", o.List)
		mux.HandleFunc("GET /evowners/reactivation-requests", o.ReactivationRequests)
		mux.HandleFunc("GET /evowners/{nic}", o.Get)
		mux.HandleFunc("PUT /evowners/{nic}", o.Update)
		mux.HandleFunc("DELETE /evowners/{nic}", o.Delete)
		mux.HandleFunc("POST /evowners/{nic}/deactivate", o.Deactivate)
		mux.HandleFunc("POST /evowners/{nic}/activate", o.Activate)
	}
	return mux
}
