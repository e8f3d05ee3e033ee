package httpserver

import (
	"net/http"

	"xpointconnect/backend/services/booking-service/internal/http/handlers"
)

// Routes groups handlers.
type Routes struct {
	Stations  *handlers.StationHandler
	Bookings  *handlers.BookingHandler
	Dashboard *handlers.DashboardHandler
	Health    http.HandlerFunc
	Metrics   http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Health != nil {
		mux.HandleFunc("GET /health", routes.Health)
	}
	if routes.Metrics != nil {
		mux.Handle("GET /metrics", routes.Metrics)
	}

	if s := routes.Stations; s != nil {
		mux.HandleFunc("GET /stations", s.List)
		mux.HandleFunc("POST /stations", s.Create)
		mux.HandleFunc("GET /stations/nearby", s.Nearby)
		mux.HandleFunc("GET /stations/{id}", s.Get)
		mux.HandleFunc("PUT /stations/{id}", s.Update)
		mux.HandleFunc("DELETE /stations/{id}", s.Delete)
		mux.HandleFunc("POST /stations/{id}/deactivate", s.Deactivate)
		mux.HandleFunc("PUT /stations/{id}/schedule", s.UpdateSchedule)
		mux.HandleFunc("GET /stations/{first}/{second}", twoSegment(
			map[string]lookup{
				"operator": {param: "operatorId", handler: s.ByOperator},
			},
			map[string]http.HandlerFunc{
				"active-bookings": s.ActiveBookings,
				"checkins":        s.CheckIns,
			},
		))
	}

	if b := routes.Bookings; b != nil {
		mux.HandleFunc("GET /bookings", b.List)
		mux.HandleFunc("POST /bookings", b.Create)
		mux.HandleFunc("POST /bookings/preview", b.Preview)
		mux.HandleFunc("POST /bookings/scan-qr", b.ScanQR)
		mux.HandleFunc("GET /bookings/{id}", b.Get)
		mux.HandleFunc("PUT /bookings/{id}", b.Update)
		mux.HandleFunc("POST /bookings/{id}/cancel", b.Cancel)
		mux.HandleFunc("POST /bookings/{id}/approve", b.Approve)
		mux.HandleFunc("POST /bookings/{id}/checkin", b.CheckIn)
		mux.HandleFunc("POST /bookings/{id}/checkout", b.CheckOut)

		lookups := map[string]lookup{
			"owner":   {param: "nic", handler: b.ListByOwner},
			"station": {param: "stationId", handler: b.ListByStation},
		}
		if d := routes.Dashboard; d != nil {
			mux.HandleFunc("GET /bookings/stats", d.Stats)
			lookups["dashboard"] = lookup{param: "nic", handler: d.Owner}
			lookups["upcoming"] = lookup{param: "nic", handler: d.Upcoming}
			lookups["history"] = lookup{param: "nic", handler: d.History}
		}
		mux.HandleFunc("GET /bookings/{first}/{second}", twoSegment(lookups, map[string]http.HandlerFunc{
			"can-modify": b.CanModify,
		}))
	}
	return mux
}

type lookup struct {
	param   string
	handler http.HandlerFunc
}

// twoSegment serves GET /<base>/<kind>/{value} lookups alongside /<base>/{id}/<view> reads.
// ServeMux rejects registering both shapes because /<base>/<kind>/<view> would match either.
// Lookup kinds take precedence over ids.
func twoSegment(lookups map[string]lookup, views map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		first, second := r.PathValue("first"), r.PathValue("second")
		if l, ok := lookups[first]; ok {
			r.SetPathValue(l.param, second)
			l.handler(w, r)
			return
		}
		if view, ok := views[second]; ok {
			r.SetPathValue("id", first)
			view(w, r)
			return
		}
		http.NotFound(w, r)
	}
}
