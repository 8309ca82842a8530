package appointments

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

// Error kinds. Match with errors.Is; use errors.As with *Error for details.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("scheduling conflict")
	ErrNotFound    = errors.New("appointment not found")
	ErrConcurrency = errors.New("concurrent modification")
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any

	kind error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Is(target error) bool {
	return e != nil && e.kind != nil && target == e.kind
}

// ConflictRef identifies an existing appointment that blocks a request.
type ConflictRef struct {
	ID          domain.AppointmentID `json:"id"`
	Time        string               `json:"time"`
	Duration    int                  `json:"duration"`
	PatientName string               `json:"patientName"`
}

// fieldErrors keeps validation failures in the order they were found.
type fieldErrors struct {
	fields []string
	msgs   map[string]string
}

func (fe *fieldErrors) add(field, msg string) {
	if fe.msgs == nil {
		fe.msgs = make(map[string]string)
	}
	if _, dup := fe.msgs[field]; dup {
		return
	}
	fe.fields = append(fe.fields, field)
	fe.msgs[field] = msg
}

func (fe *fieldErrors) empty() bool { return len(fe.fields) == 0 }

func (fe *fieldErrors) err() error {
	if fe.empty() {
		return nil
	}
	details := make(map[string]any, len(fe.fields))
	parts := make([]string, 0, len(fe.fields))
	for _, f := range fe.fields {
		details[f] = fe.msgs[f]
		parts = append(parts, fe.msgs[f])
	}
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    "VALIDATION_ERROR",
		Message: "Validation failed: " + strings.Join(parts, "; "),
		Details: details,
		kind:    ErrValidation,
	}
}

func validationError(field, msg string) error {
	var fe fieldErrors
	fe.add(field, msg)
	return fe.err()
}

func conflictError(conflicts []domain.Appointment) error {
	refs := make([]ConflictRef, 0, len(conflicts))
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		refs = append(refs, ConflictRef{ID: c.ID, Time: c.Time, Duration: c.Duration, PatientName: c.PatientName})
		parts = append(parts, c.PatientName+" at "+c.Time+" ("+string(c.ID)+")")
	}
	return &Error{
		Status:  http.StatusConflict,
		Code:    "SCHEDULING_CONFLICT",
		Message: "Scheduling conflicts detected: " + strings.Join(parts, "; "),
		Details: map[string]any{"conflicts": refs},
		kind:    ErrConflict,
	}
}

func notFoundError(id domain.AppointmentID) error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    "APPOINTMENT_NOT_FOUND",
		Message: "Appointment not found: " + string(id),
		Details: map[string]any{"id": string(id)},
		kind:    ErrNotFound,
	}
}

func concurrencyError(a domain.Appointment) error {
	return &Error{
		Status:  http.StatusConflict,
		Code:    "CONCURRENT_MODIFICATION",
		Message: "appointment slot was modified by another operation; retry the request",
		Details: map[string]any{"doctorName": a.DoctorName, "date": a.Date},
		kind:    ErrConcurrency,
	}
}
