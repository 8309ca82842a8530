package appointmentrepo

import (
	"context"
	"slices"
	"sync"

	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
)

// Repo is an in-memory implementation of appointmentrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu    sync.RWMutex
	order []domain.AppointmentID
	byID  map[domain.AppointmentID]domain.Appointment
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.AppointmentID]domain.Appointment),
	}
}

func (r *Repo) Create(ctx context.Context, a domain.Appointment) error {
	_ = ctx
	if a.ID == "" {
		return appointmentrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; ok {
		return appointmentrepo.ErrAlreadyExists
	}
	if r.collidesLocked(a) {
		return appointmentrepo.ErrSlotTaken
	}
	r.byID[a.ID] = a
	r.order = append(r.order, a.ID)
	return nil
}

func (r *Repo) UpdateStatus(ctx context.Context, id domain.AppointmentID, status domain.AppointmentStatus) (domain.Appointment, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.Appointment{}, appointmentrepo.ErrNotFound
	}
	revived := !a.Blocks() && status != domain.StatusCancelled
	a.Status = status
	if revived && r.collidesLocked(a) {
		return domain.Appointment{}, appointmentrepo.ErrSlotTaken
	}
	r.byID[id] = a
	return a, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.AppointmentID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return appointmentrepo.ErrNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(x domain.AppointmentID) bool { return x == id })
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AppointmentID) (domain.Appointment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.Appointment{}, appointmentrepo.ErrNotFound
	}
	return a, nil
}

func (r *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Appointment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Appointment, 0, len(r.order))
	for _, id := range r.order {
		a := r.byID[id]
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// collidesLocked reports whether a overlaps any other blocking record.
// Caller must hold r.mu.
func (r *Repo) collidesLocked(a domain.Appointment) bool {
	for _, id := range r.order {
		if id == a.ID {
			continue
		}
		if domain.Collides(r.byID[id], a) {
			return true
		}
	}
	return false
}
