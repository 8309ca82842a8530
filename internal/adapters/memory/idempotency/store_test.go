package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	rec := idempotency.Record{
		Operation:   idempotency.OperationCreate,
		Appointment: domain.Appointment{ID: "apt_1", PatientName: "Ann", Status: domain.StatusScheduled},
		CreatedAt:   time.Unix(123, 0).UTC(),
	}

	if err := s.Put(context.Background(), "k1", rec); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	got, ok, err := s.Get(context.Background(), "k1")
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if !ok {
		t.Fatalf("Get() ok=false, want true")
	}
	if got != rec {
		t.Fatalf("Get()=%+v, want %+v", got, rec)
	}
	if s.Len() != 1 {
		t.Fatalf("Len()=%d, want 1", s.Len())
	}
}
