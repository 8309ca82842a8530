package domain

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusUpcoming  AppointmentStatus = "Upcoming"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Statuses lists every allowed status in display order.
var Statuses = []AppointmentStatus{StatusConfirmed, StatusScheduled, StatusUpcoming, StatusCancelled}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusUpcoming, StatusCancelled:
		return true
	default:
		return false
	}
}

type AppointmentMode string

const (
	ModeOnline   AppointmentMode = "online"
	ModeInPerson AppointmentMode = "in-person"
)

// Modes lists every allowed mode.
var Modes = []AppointmentMode{ModeOnline, ModeInPerson}

func (m AppointmentMode) Valid() bool {
	return m == ModeOnline || m == ModeInPerson
}

// Appointment is the domain representation of a booked appointment.
//
// Date and Time are kept as the literal strings supplied by callers
// (YYYY-MM-DD and HH:MM); no timezone conversion is applied.
type Appointment struct {
	ID          AppointmentID     `json:"id"`
	PatientName string            `json:"patientName"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Duration    int               `json:"duration"`
	DoctorName  string            `json:"doctorName"`
	Status      AppointmentStatus `json:"status"`
	Mode        AppointmentMode   `json:"mode"`
}

// Window returns the appointment's half-open time window on its date.
// ok is false when the stored time cannot be parsed.
func (a Appointment) Window() (Window, bool) {
	start, err := ParseClock(a.Time)
	if err != nil {
		return Window{}, false
	}
	return Window{Start: start, End: start + a.Duration}, true
}

// Blocks reports whether the appointment occupies its slot.
// Cancelled appointments never take part in conflict detection.
func (a Appointment) Blocks() bool {
	return a.Status != StatusCancelled
}

// Optional is a present/absent field used for sparse filters.
type Optional[T any] struct {
	specified bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) Value() T          { return o.value }

// Filter selects appointments by exact, case-sensitive field equality.
// Absent fields impose no constraint; present fields are AND-ed.
type Filter struct {
	Date       Optional[string]
	Status     Optional[AppointmentStatus]
	DoctorName Optional[string]

	// DateFrom and DateTo bound Date inclusively. Dates compare lexically,
	// which matches calendar order for YYYY-MM-DD.
	DateFrom Optional[string]
	DateTo   Optional[string]
}

func (f Filter) Matches(a Appointment) bool {
	if f.Date.IsSpecified() && a.Date != f.Date.Value() {
		return false
	}
	if f.Status.IsSpecified() && a.Status != f.Status.Value() {
		return false
	}
	if f.DoctorName.IsSpecified() && a.DoctorName != f.DoctorName.Value() {
		return false
	}
	if f.DateFrom.IsSpecified() && a.Date < f.DateFrom.Value() {
		return false
	}
	if f.DateTo.IsSpecified() && a.Date > f.DateTo.Value() {
		return false
	}
	return true
}
