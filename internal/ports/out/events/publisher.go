package events

import (
	"context"
	"time"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

type Type string

const (
	TypeCreated       Type = "appointment.created"
	TypeStatusChanged Type = "appointment.status_changed"
	TypeDeleted       Type = "appointment.deleted"
)

// Event describes a committed appointment mutation.
// Appointment holds the record as it was after the change (before it, for deletes).
type Event struct {
	ID            domain.EventID       `json:"id"`
	Type          Type                 `json:"type"`
	AppointmentID domain.AppointmentID `json:"appointmentId"`
	OccurredAt    time.Time            `json:"occurredAt"`
	Appointment   domain.Appointment   `json:"appointment"`
}

// Publisher delivers events to downstream consumers.
// Delivery is best-effort; callers must not roll back a commit on error.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
