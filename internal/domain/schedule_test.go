package domain

import "testing"

func TestParseClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "09-30", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseClock(%q) expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q) err=%v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseClock(%q)=%d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseDate_RejectsImpossibleDates(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"2024-01-15", "2024-02-29", "1999-12-31"} {
		if _, err := ParseDate(ok); err != nil {
			t.Fatalf("ParseDate(%q) err=%v", ok, err)
		}
	}
	for _, bad := range []string{"2023-02-29", "2024-13-01", "2024-04-31", "2024-1-15", "15-01-2024", "2024/01/15", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestWindow_OverlapsIsHalfOpen(t *testing.T) {
	t.Parallel()

	a := Window{Start: 540, End: 600}
	if !a.Overlaps(Window{Start: 570, End: 600}) {
		t.Fatalf("expected overlap for contained window")
	}
	if a.Overlaps(Window{Start: 600, End: 630}) {
		t.Fatalf("adjacent windows must not overlap")
	}
	if a.Overlaps(Window{Start: 500, End: 540}) {
		t.Fatalf("window ending at start must not overlap")
	}
	if !a.Overlaps(Window{Start: 500, End: 541}) {
		t.Fatalf("expected overlap by one minute")
	}
}

func TestCollides_SymmetricAndIgnoresCancelled(t *testing.T) {
	t.Parallel()

	a := Appointment{ID: "a", DoctorName: "Dr. A", Date: "2024-01-15", Time: "09:00", Duration: 60, Status: StatusScheduled}
	b := Appointment{ID: "b", DoctorName: "Dr. A", Date: "2024-01-15", Time: "09:30", Duration: 30, Status: StatusConfirmed}

	if !Collides(a, b) || !Collides(b, a) {
		t.Fatalf("expected symmetric collision")
	}

	b.Status = StatusCancelled
	if Collides(a, b) || Collides(b, a) {
		t.Fatalf("cancelled appointments must not collide")
	}

	b.Status = StatusScheduled
	b.DoctorName = "Dr. B"
	if Collides(a, b) {
		t.Fatalf("different doctors must not collide")
	}

	b.DoctorName = "Dr. A"
	b.Date = "2024-01-16"
	if Collides(a, b) {
		t.Fatalf("different dates must not collide")
	}
}

func TestFilter_Matches(t *testing.T) {
	t.Parallel()

	a := Appointment{DoctorName: "Dr. Smith", Date: "2024-01-15", Status: StatusConfirmed}

	if !(Filter{}).Matches(a) {
		t.Fatalf("empty filter must match")
	}
	if !(Filter{Date: Some("2024-01-15"), DoctorName: Some("Dr. Smith")}).Matches(a) {
		t.Fatalf("expected match on date+doctor")
	}
	if (Filter{DoctorName: Some("dr. smith")}).Matches(a) {
		t.Fatalf("doctor filter must be case-sensitive")
	}
	if (Filter{Status: Some(StatusCancelled)}).Matches(a) {
		t.Fatalf("expected status mismatch")
	}
	if !(Filter{DateFrom: Some("2024-01-01"), DateTo: Some("2024-01-15")}).Matches(a) {
		t.Fatalf("expected inclusive range match")
	}
	if (Filter{DateFrom: Some("2024-01-16")}).Matches(a) {
		t.Fatalf("expected range exclusion")
	}
}
