package appointmentrepo

import (
	"context"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

// Repository is the ordered record store for appointments.
//
// Ordering expectations:
// - List returns records in insertion order; deletes do not reorder the rest.
type Repository interface {
	// Create appends a. It fails with ErrAlreadyExists on a duplicate id and
	// with ErrSlotTaken if a blocking record for the same doctor and date
	// overlaps a.
	Create(ctx context.Context, a domain.Appointment) error

	// UpdateStatus replaces the status of id in place and returns the updated
	// record. Moving a cancelled record back to a blocking status fails with
	// ErrSlotTaken if its window has been taken since.
	UpdateStatus(ctx context.Context, id domain.AppointmentID, status domain.AppointmentStatus) (domain.Appointment, error)

	Delete(ctx context.Context, id domain.AppointmentID) error

	GetByID(ctx context.Context, id domain.AppointmentID) (domain.Appointment, error)

	// List returns records matching every specified field of f.
	List(ctx context.Context, f domain.Filter) ([]domain.Appointment, error)
}
