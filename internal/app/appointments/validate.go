package appointments

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

// Draft is a validated create payload.
type Draft struct {
	PatientName string
	Date        string
	Time        string
	Duration    int
	DoctorName  string
	Mode        domain.AppointmentMode
}

func (d Draft) appointment(id domain.AppointmentID) domain.Appointment {
	return domain.Appointment{
		ID:          id,
		PatientName: d.PatientName,
		Date:        d.Date,
		Time:        d.Time,
		Duration:    d.Duration,
		DoctorName:  d.DoctorName,
		Status:      domain.StatusScheduled,
		Mode:        d.Mode,
	}
}

// Validate checks a decoded create payload and reports every failing field,
// not just the first one. It has no side effects.
func Validate(payload map[string]any) (Draft, error) {
	var (
		d  Draft
		fe fieldErrors
	)

	d.PatientName = requireName(&fe, payload, "patientName", "Patient name")

	if s, ok := requireString(&fe, payload, "date", "Date"); ok {
		if _, err := domain.ParseDate(s); err != nil {
			fe.add("date", "Date must be in YYYY-MM-DD format")
		}
		d.Date = s
	}

	if s, ok := requireString(&fe, payload, "time", "Time"); ok {
		if _, err := domain.ParseClock(s); err != nil {
			fe.add("time", "Time must be in HH:MM format (24-hour)")
		}
		d.Time = s
	}

	if raw, ok := payload["duration"]; !ok || raw == nil {
		fe.add("duration", "Duration is required")
	} else if n, ok := asInt(raw); !ok {
		fe.add("duration", "Duration must be an integer")
	} else if n < domain.MinDuration {
		fe.add("duration", "Duration must be greater than 0 minutes")
	} else if n > domain.MaxDuration {
		fe.add("duration", "Duration cannot exceed 480 minutes (8 hours)")
	} else {
		d.Duration = n
	}

	d.DoctorName = requireName(&fe, payload, "doctorName", "Doctor name")

	if s, ok := requireString(&fe, payload, "mode", "Appointment mode"); ok {
		if !domain.AppointmentMode(s).Valid() {
			fe.add("mode", "Appointment mode must be one of: "+joinModes())
		}
		d.Mode = domain.AppointmentMode(s)
	}

	if err := fe.err(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func requireString(fe *fieldErrors, payload map[string]any, field, label string) (string, bool) {
	raw, ok := payload[field]
	if !ok || raw == nil {
		fe.add(field, label+" is required")
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		fe.add(field, label+" must be a string")
		return "", false
	}
	return s, true
}

func requireName(fe *fieldErrors, payload map[string]any, field, label string) string {
	s, ok := requireString(fe, payload, field, label)
	if !ok {
		return ""
	}
	if strings.TrimSpace(s) == "" {
		fe.add(field, label+" cannot be empty or whitespace only")
		return ""
	}
	return s
}

// asInt accepts integral JSON numbers. 30.0 is accepted, 30.5 is not.
// Integral values beyond the int32 range are clamped so range checks still
// report them as too large or too small.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return clamp(int64(n)), true
	case int32:
		return int(n), true
	case int64:
		return clamp(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		switch {
		case n > math.MaxInt32:
			return math.MaxInt32, true
		case n < math.MinInt32:
			return math.MinInt32, true
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return clamp(i), true
		}
		// ParseFloat reports ±Inf alongside a range error for huge literals.
		f, err := n.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return 0, false
		}
		if math.IsInf(f, 1) {
			return math.MaxInt32, true
		}
		if math.IsInf(f, -1) {
			return math.MinInt32, true
		}
		return asInt(f)
	default:
		return 0, false
	}
}

func clamp(i int64) int {
	switch {
	case i > math.MaxInt32:
		return math.MaxInt32
	case i < math.MinInt32:
		return math.MinInt32
	}
	return int(i)
}

func joinModes() string {
	parts := make([]string, 0, len(domain.Modes))
	for _, m := range domain.Modes {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, ", ")
}

func joinStatuses() string {
	parts := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}
