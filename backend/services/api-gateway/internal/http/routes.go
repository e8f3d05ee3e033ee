package httpserver

import (
	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/services/api-gateway/internal/http/handlers"
)

// Upstream names used in the route table.
const (
	UpstreamAuth    = "auth"
	UpstreamBooking = "booking"
)

// Route declares one proxied endpoint and who may call it. Ownership checks (an EV owner
// reading only their own bookings, an operator editing only their stations) stay with the
// upstream service; the gateway enforces the role gate.
type Route struct {
	Pattern    string
	Upstream   string
	Allow      handlers.Policy
	Cache      bool
	Invalidate bool
}

var (
	public            handlers.Policy
	anyone            = handlers.AnyOf(auth.RoleEVOwner, auth.RoleStationOperator, auth.RoleBackOffice)
	staff             = handlers.Policy(auth.Role.IsStaff)
	backOffice        = handlers.Policy(auth.Role.CanManageStations)
	approvers         = handlers.Policy(auth.Role.CanApproveBookings)
	chargerOperators  = handlers.Policy(auth.Role.CanOperateChargers)
	ownerOrBackOffice = handlers.AnyOf(auth.RoleEVOwner, auth.RoleBackOffice)
)

// DefaultRoutes is the public API surface under /api.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "POST /api/auth/login", Upstream: UpstreamAuth, Allow: public},
		{Pattern: "POST /api/auth/evowners/register", Upstream: UpstreamAuth, Allow: public},
		{Pattern: "POST /api/auth/evowners/login", Upstream: UpstreamAuth, Allow: public},
		{Pattern: "GET /api/auth/users", Upstream: UpstreamAuth, Allow: backOffice},
		{Pattern: "POST /api/auth/users", Upstream: UpstreamAuth, Allow: backOffice},
		{Pattern: "GET /api/auth/users/{id}", Upstream: UpstreamAuth, Allow: staff},
		{Pattern: "PUT /api/auth/users/{id}", Upstream: UpstreamAuth, Allow: backOffice},
		{Pattern: "DELETE /api/auth/users/{id}", Upstream: UpstreamAuth, Allow: backOffice},

		{Pattern: "GET /api/evowners", Upstream: UpstreamAuth, Allow: backOffice},
		{Pattern: "GET /api/evowners/reactivation-requests", Upstream: UpstreamAuth, Allow: backOffice},
		{Pattern: "GET /api/evowners/{nic}", Upstream: UpstreamAuth, Allow: anyone},
		{Pattern: "PUT /api/evowners/{nic}", Upstream: UpstreamAuth, Allow: ownerOrBackOffice},
		{Pattern: "DELETE /api/evowners/{nic}", Upstream: UpstreamAuth, Allow: backOffice},
		{Pattern: "POST /api/evowners/{nic}/deactivate", Upstream: UpstreamAuth, Allow: ownerOrBackOffice},
		{Pattern: "POST /api/evowners/{nic}/activate", Upstream: UpstreamAuth, Allow: backOffice},

		{Pattern: "GET /api/stations", Upstream: UpstreamBooking, Allow: public, Cache: true},
		{Pattern: "GET /api/stations/nearby", Upstream: UpstreamBooking, Allow: public, Cache: true},
		{Pattern: "GET /api/stations/{id}", Upstream: UpstreamBooking, Allow: public, Cache: true},
		{Pattern: "GET /api/stations/{first}/{second}", Upstream: UpstreamBooking, Allow: staff},
		{Pattern: "POST /api/stations", Upstream: UpstreamBooking, Allow: backOffice, Invalidate: true},
		{Pattern: "PUT /api/stations/{id}", Upstream: UpstreamBooking, Allow: staff, Invalidate: true},
		{Pattern: "DELETE /api/stations/{id}", Upstream: UpstreamBooking, Allow: backOffice, Invalidate: true},
		{Pattern: "POST /api/stations/{id}/deactivate", Upstream: UpstreamBooking, Allow: backOffice, Invalidate: true},
		{Pattern: "PUT /api/stations/{id}/schedule", Upstream: UpstreamBooking, Allow: staff, Invalidate: true},

		{Pattern: "GET /api/bookings", Upstream: UpstreamBooking, Allow: staff},
		{Pattern: "POST /api/bookings", Upstream: UpstreamBooking, Allow: ownerOrBackOffice},
		{Pattern: "POST /api/bookings/preview", Upstream: UpstreamBooking, Allow: ownerOrBackOffice},
		{Pattern: "POST /api/bookings/scan-qr", Upstream: UpstreamBooking, Allow: chargerOperators},
		{Pattern: "GET /api/bookings/stats", Upstream: UpstreamBooking, Allow: backOffice},
		{Pattern: "GET /api/bookings/{id}", Upstream: UpstreamBooking, Allow: anyone},
		{Pattern: "PUT /api/bookings/{id}", Upstream: UpstreamBooking, Allow: anyone},
		{Pattern: "GET /api/bookings/{first}/{second}", Upstream: UpstreamBooking, Allow: anyone},
		{Pattern: "POST /api/bookings/{id}/cancel", Upstream: UpstreamBooking, Allow: anyone},
		{Pattern: "POST /api/bookings/{id}/approve", Upstream: UpstreamBooking, Allow: approvers},
		{Pattern: "POST /api/bookings/{id}/checkin", Upstream: UpstreamBooking, Allow: chargerOperators},
		{Pattern: "POST /api/bookings/{id}/checkout", Upstream: UpstreamBooking, Allow: chargerOperators},
	}
}
