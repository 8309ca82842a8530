package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for appointment dates.
	DateLayout = "2006-01-02"

	MinDuration = 1
	MaxDuration = 480
)

var (
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidClock = errors.New("time must be in HH:MM format (24-hour)")
)

// ParseDate parses a YYYY-MM-DD string and rejects dates that do not exist
// on the calendar (e.g. 2023-02-29).
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseClock parses a zero-padded 24-hour HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as HH:MM. Values past midnight
// are rendered as-is (e.g. 1470 -> "24:30") so window ends stay readable.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Window is a half-open interval [Start, End) in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open windows intersect.
// Touching windows (w.End == o.Start) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// Collides reports whether a and b compete for the same doctor's time:
// same doctor, same date, both blocking, overlapping windows.
// Appointments with unparseable times never collide.
func Collides(a, b Appointment) bool {
	if a.DoctorName != b.DoctorName || a.Date != b.Date {
		return false
	}
	if !a.Blocks() || !b.Blocks() {
		return false
	}
	wa, ok := a.Window()
	if !ok {
		return false
	}
	wb, ok := b.Window()
	if !ok {
		return false
	}
	return wa.Overlaps(wb)
}
