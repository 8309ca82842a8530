package httpapi

import (
	"github.com/clinicflow/scheduling-api/internal/app/appointments"
	"github.com/clinicflow/scheduling-api/internal/app/dashboard"
	"github.com/clinicflow/scheduling-api/internal/ports/out/clock"
)

// APIVersion is reported by /api/health.
const APIVersion = "1.0.0"

// Server holds the services behind the HTTP handlers.
type Server struct {
	Appointments *appointments.Service
	Dashboard    *dashboard.Service
	Clock        clock.Clock
}

func NewServer(appts *appointments.Service, dash *dashboard.Service, clk clock.Clock) *Server {
	return &Server{
		Appointments: appts,
		Dashboard:    dash,
		Clock:        clk,
	}
}
