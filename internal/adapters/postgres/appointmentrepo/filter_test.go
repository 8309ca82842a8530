package appointmentrepo

import (
	"testing"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

func TestFilterClause(t *testing.T) {
	t.Parallel()

	where, args := filterClause(domain.Filter{})
	if where != "" || len(args) != 0 {
		t.Fatalf("empty filter: where=%q args=%v", where, args)
	}

	where, args = filterClause(domain.Filter{
		Date:       domain.Some("2024-01-15"),
		Status:     domain.Some(domain.StatusConfirmed),
		DoctorName: domain.Some("Dr. Smith"),
	})
	want := " WHERE appt_date = $1 AND status = $2 AND doctor_name = $3"
	if where != want {
		t.Fatalf("where=%q, want %q", where, want)
	}
	if len(args) != 3 || args[0] != "2024-01-15" || args[1] != "Confirmed" || args[2] != "Dr. Smith" {
		t.Fatalf("args=%v", args)
	}

	where, _ = filterClause(domain.Filter{DateFrom: domain.Some("2024-01-01"), DateTo: domain.Some("2024-01-31")})
	if where != " WHERE appt_date >= $1 AND appt_date <= $2" {
		t.Fatalf("range where=%q", where)
	}
}
