package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterOptions struct {
	// Logger is attached to every request context. Zero value logs nothing.
	Logger zerolog.Logger

	// RequestTimeout bounds handler time. Zero disables the timeout.
	RequestTimeout time.Duration

	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string

	// ReadyChecks run on /readyz.
	ReadyChecks []ReadyCheck

	// TraceName names the server span. Empty disables otelhttp.
	TraceName string
}

// NewRouter constructs the API HTTP router.
func NewRouter(api *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(opts.Logger))
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORS(opts.CORSOrigins))
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	// Infra checks live outside /api.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", readyHandler(opts.ReadyChecks))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", api.Health)
		r.Get("/dashboard/metrics", api.DashboardMetrics)

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", api.ListAppointments)
			r.Post("/", api.CreateAppointment)
			r.Get("/overlaps", api.ListOverlaps)
			r.Get("/slots", api.ListTimeSlots)
			r.Get("/conflicts", api.ConflictSummary)
			r.Get("/occupancy", api.SlotOccupancy)
			r.Get("/{id}", api.GetAppointment)
			r.Delete("/{id}", api.DeleteAppointment)
			r.Put("/{id}/status", api.UpdateAppointmentStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	if opts.TraceName == "" {
		return r
	}
	return otelhttp.NewHandler(r, opts.TraceName)
}
