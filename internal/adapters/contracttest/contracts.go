package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/scheduling-api/internal/domain"
	appointmentrepoport "github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
	idempotencyport "github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

type CleanupFunc = func()

type AppointmentRepoFactory func(t *testing.T) (appointmentrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Keys are unique per run so durable stores can share a database.
	key := idempotencyport.Key("k-" + uuid.NewString())

	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get unknown key: ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		Operation: idempotencyport.OperationCreate,
		Appointment: domain.Appointment{
			ID:          "apt_c0ffee01",
			PatientName: "Ann Lee",
			Date:        "2024-01-15",
			Time:        "09:00",
			Duration:    30,
			DoctorName:  "Dr. A",
			Status:      domain.StatusScheduled,
			Mode:        domain.ModeOnline,
		},
		CreatedAt: time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, key, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if got.Operation != rec.Operation || got.Appointment != rec.Appointment || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", got)
	}

	// First writer wins.
	rec2 := rec
	rec2.Operation = idempotencyport.OperationUpdateStatus
	rec2.Appointment.Status = domain.StatusConfirmed
	if err := store.Put(ctx, key, rec2); err != nil {
		t.Fatalf("Put second: %v", err)
	}
	got, ok, err = store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get after second Put: ok=%v err=%v", ok, err)
	}
	if got.Operation != idempotencyport.OperationCreate || got.Appointment.Status != domain.StatusScheduled {
		t.Fatalf("second Put overwrote first record: %+v", got)
	}
}

func RunAppointmentRepo(t *testing.T, newRepo AppointmentRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// A doctor name unique to this run keeps durable stores isolated.
	doctor := "Dr. " + uuid.NewString()[:8]
	date := "2024-01-15"
	mk := func(id, clock string, dur int) domain.Appointment {
		return domain.Appointment{
			ID:          domain.AppointmentID("apt_" + id + "_" + uuid.NewString()[:4]),
			PatientName: "Patient " + id,
			Date:        date,
			Time:        clock,
			Duration:    dur,
			DoctorName:  doctor,
			Status:      domain.StatusScheduled,
			Mode:        domain.ModeInPerson,
		}
	}
	only := domain.Filter{DoctorName: domain.Some(doctor)}

	a := mk("a", "09:00", 60)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != a {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, a)
	}

	if err := repo.Create(ctx, a); !errors.Is(err, appointmentrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create err=%v, want ErrAlreadyExists", err)
	}

	// Overlap is refused at commit time; adjacency is not.
	if err := repo.Create(ctx, mk("x", "09:30", 30)); !errors.Is(err, appointmentrepoport.ErrSlotTaken) {
		t.Fatalf("overlapping Create err=%v, want ErrSlotTaken", err)
	}
	b := mk("b", "10:00", 30)
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create adjacent b: %v", err)
	}
	c := mk("c", "11:00", 15)
	c.Mode = domain.ModeOnline
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create c: %v", err)
	}

	// Insertion order.
	list, err := repo.List(ctx, only)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].ID != a.ID || list[1].ID != b.ID || list[2].ID != c.ID {
		t.Fatalf("unexpected ordering: %#v", list)
	}

	// Filters AND together.
	list, err = repo.List(ctx, domain.Filter{DoctorName: domain.Some(doctor), Date: domain.Some("2024-01-16")})
	if err != nil || len(list) != 0 {
		t.Fatalf("List other date: n=%d err=%v", len(list), err)
	}

	// Status update keeps every other field.
	upd, err := repo.UpdateStatus(ctx, b.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	want := b
	want.Status = domain.StatusConfirmed
	if upd != want {
		t.Fatalf("UpdateStatus()=%+v, want %+v", upd, want)
	}
	list, err = repo.List(ctx, domain.Filter{DoctorName: domain.Some(doctor), Status: domain.Some(domain.StatusConfirmed)})
	if err != nil || len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("List by status: %#v err=%v", list, err)
	}
	if _, err := repo.UpdateStatus(ctx, "apt_missing", domain.StatusConfirmed); !errors.Is(err, appointmentrepoport.ErrNotFound) {
		t.Fatalf("UpdateStatus missing err=%v, want ErrNotFound", err)
	}

	// Cancelling frees the slot; reviving after it was taken is refused.
	if _, err := repo.UpdateStatus(ctx, a.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel a: %v", err)
	}
	d := mk("d", "09:15", 30)
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create into freed slot: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, a.ID, domain.StatusScheduled); !errors.Is(err, appointmentrepoport.ErrSlotTaken) {
		t.Fatalf("revive a err=%v, want ErrSlotTaken", err)
	}
	if got, err := repo.GetByID(ctx, a.ID); err != nil || got.Status != domain.StatusCancelled {
		t.Fatalf("failed revive changed record: %+v err=%v", got, err)
	}

	// Delete keeps the order of the rest.
	if err := repo.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, b.ID); !errors.Is(err, appointmentrepoport.ErrNotFound) {
		t.Fatalf("GetByID after delete err=%v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, b.ID); !errors.Is(err, appointmentrepoport.ErrNotFound) {
		t.Fatalf("second Delete err=%v, want ErrNotFound", err)
	}
	list, err = repo.List(ctx, only)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(list) != 3 || list[0].ID != a.ID || list[1].ID != c.ID || list[2].ID != d.ID {
		t.Fatalf("unexpected ordering after delete: %#v", list)
	}

	// Inclusive date range.
	list, err = repo.List(ctx, domain.Filter{DoctorName: domain.Some(doctor), DateFrom: domain.Some(date), DateTo: domain.Some(date)})
	if err != nil || len(list) != 3 {
		t.Fatalf("List range: n=%d err=%v", len(list), err)
	}
}
