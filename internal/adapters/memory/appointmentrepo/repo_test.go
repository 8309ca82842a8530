package appointmentrepo

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

func TestRepo_ListReturnsCopies(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	ctx := context.Background()
	if err := r.Create(ctx, domain.Appointment{ID: "apt_1", DoctorName: "Dr. A", Date: "2024-01-15", Time: "09:00", Duration: 30, Status: domain.StatusScheduled}); err != nil {
		t.Fatalf("Create() err=%v", err)
	}

	got, err := r.List(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("List() err=%v", err)
	}
	got[0].Status = domain.StatusCancelled

	again, err := r.GetByID(ctx, "apt_1")
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	if again.Status != domain.StatusScheduled {
		t.Fatalf("mutating List() result leaked into store: status=%s", again.Status)
	}
}

func TestRepo_ConcurrentCreatesKeepEveryRecord(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Create(ctx, domain.Appointment{
				ID:         domain.AppointmentID(fmt.Sprintf("apt_%03d", i)),
				DoctorName: fmt.Sprintf("Dr. %d", i),
				Date:       "2024-01-15",
				Time:       "09:00",
				Duration:   30,
				Status:     domain.StatusScheduled,
			})
		}(i)
	}
	wg.Wait()

	got, err := r.List(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("List() err=%v", err)
	}
	if len(got) != n {
		t.Fatalf("len(List())=%d, want %d", len(got), n)
	}
}
