package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
	"github.com/clinicflow/scheduling-api/internal/ports/out/clock"
	"github.com/clinicflow/scheduling-api/internal/ports/out/events"
	"github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

const maxIDAttempts = 10

// Service runs appointment mutations and queries.
//
// Mutations are serialized by mu, so the idempotency lookup, validation,
// conflict check and commit of one call never interleave with another
// mutation in this process. Reads do not take mu.
type Service struct {
	repo   appointmentrepo.Repository
	idem   idempotency.Store
	clock  clock.Clock
	events events.Publisher

	mu sync.Mutex

	newAppointmentID func() domain.AppointmentID
	newEventID       func() domain.EventID
}

// NewService wires the service. pub may be nil, in which case no events are published.
func NewService(repo appointmentrepo.Repository, idem idempotency.Store, clk clock.Clock, pub events.Publisher) *Service {
	return &Service{
		repo:   repo,
		idem:   idem,
		clock:  clk,
		events: pub,
		newAppointmentID: func() domain.AppointmentID {
			return domain.AppointmentID("apt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		},
		newEventID: func() domain.EventID {
			return domain.EventID(uuid.NewString())
		},
	}
}

// SetNewAppointmentIDForTest overrides appointment ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewAppointmentIDForTest(fn func() domain.AppointmentID) {
	if fn != nil {
		s.newAppointmentID = fn
	}
}

// Create validates payload, rejects it if it collides with an existing
// blocking appointment, and stores it with status Scheduled.
//
// When key is non-empty and already known, the stored result is returned
// unchanged and nothing else runs.
func (s *Service) Create(ctx context.Context, payload map[string]any, key idempotency.Key) (domain.Appointment, error) {
	a, replayed, err := s.create(ctx, payload, key)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !replayed {
		s.publish(ctx, events.TypeCreated, a)
	}
	return a, nil
}

func (s *Service) create(ctx context.Context, payload map[string]any, key idempotency.Key) (domain.Appointment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok, err := s.lookup(ctx, key); err != nil {
		return domain.Appointment{}, false, err
	} else if ok {
		return rec.Appointment, true, nil
	}

	draft, err := Validate(payload)
	if err != nil {
		return domain.Appointment{}, false, err
	}

	candidate := draft.appointment("")
	sameSlot, err := s.repo.List(ctx, domain.Filter{
		DoctorName: domain.Some(candidate.DoctorName),
		Date:       domain.Some(candidate.Date),
	})
	if err != nil {
		return domain.Appointment{}, false, fmt.Errorf("list appointments: %w", err)
	}
	if conflicts := DetectConflicts(candidate, sameSlot); len(conflicts) > 0 {
		return domain.Appointment{}, false, conflictError(conflicts)
	}

	created := false
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate.ID = s.newAppointmentID()
		err = s.repo.Create(ctx, candidate)
		if errors.Is(err, appointmentrepo.ErrAlreadyExists) {
			continue
		}
		if errors.Is(err, appointmentrepo.ErrSlotTaken) {
			return domain.Appointment{}, false, concurrencyError(candidate)
		}
		if err != nil {
			return domain.Appointment{}, false, fmt.Errorf("create appointment: %w", err)
		}
		created = true
		break
	}
	if !created {
		return domain.Appointment{}, false, fmt.Errorf("unable to generate unique appointment id after %d attempts", maxIDAttempts)
	}

	s.remember(ctx, key, idempotency.OperationCreate, candidate)
	return candidate, false, nil
}

// UpdateStatus replaces the status of id, leaving every other field as is.
// Reviving a cancelled appointment re-runs conflict detection for its window.
func (s *Service) UpdateStatus(ctx context.Context, id domain.AppointmentID, status string, key idempotency.Key) (domain.Appointment, error) {
	a, replayed, err := s.updateStatus(ctx, id, status, key)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !replayed {
		s.publish(ctx, events.TypeStatusChanged, a)
	}
	return a, nil
}

func (s *Service) updateStatus(ctx context.Context, id domain.AppointmentID, status string, key idempotency.Key) (domain.Appointment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok, err := s.lookup(ctx, key); err != nil {
		return domain.Appointment{}, false, err
	} else if ok {
		return rec.Appointment, true, nil
	}

	if strings.TrimSpace(string(id)) == "" {
		return domain.Appointment{}, false, validationError("id", "Appointment ID cannot be empty")
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentrepo.ErrNotFound) {
			return domain.Appointment{}, false, notFoundError(id)
		}
		return domain.Appointment{}, false, fmt.Errorf("get appointment: %w", err)
	}

	next := domain.AppointmentStatus(status)
	if !next.Valid() {
		return domain.Appointment{}, false, validationError("status", "Status must be one of: "+joinStatuses())
	}

	if !current.Blocks() && next != domain.StatusCancelled {
		revived := current
		revived.Status = next
		sameSlot, err := s.repo.List(ctx, domain.Filter{
			DoctorName: domain.Some(current.DoctorName),
			Date:       domain.Some(current.Date),
		})
		if err != nil {
			return domain.Appointment{}, false, fmt.Errorf("list appointments: %w", err)
		}
		if conflicts := DetectConflicts(revived, sameSlot); len(conflicts) > 0 {
			return domain.Appointment{}, false, conflictError(conflicts)
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		switch {
		case errors.Is(err, appointmentrepo.ErrNotFound):
			return domain.Appointment{}, false, notFoundError(id)
		case errors.Is(err, appointmentrepo.ErrSlotTaken):
			return domain.Appointment{}, false, concurrencyError(current)
		}
		return domain.Appointment{}, false, fmt.Errorf("update appointment status: %w", err)
	}

	s.remember(ctx, key, idempotency.OperationUpdateStatus, updated)
	return updated, false, nil
}

// Delete removes id. It fails with a not-found error if id is unknown.
func (s *Service) Delete(ctx context.Context, id domain.AppointmentID) error {
	removed, err := s.delete(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, events.TypeDeleted, removed)
	return nil
}

func (s *Service) delete(ctx context.Context, id domain.AppointmentID) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(string(id)) == "" {
		return domain.Appointment{}, validationError("id", "Appointment ID cannot be empty")
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentrepo.ErrNotFound) {
			return domain.Appointment{}, notFoundError(id)
		}
		return domain.Appointment{}, fmt.Errorf("get appointment: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, appointmentrepo.ErrNotFound) {
			return domain.Appointment{}, notFoundError(id)
		}
		return domain.Appointment{}, fmt.Errorf("delete appointment: %w", err)
	}
	return current, nil
}

func (s *Service) lookup(ctx context.Context, key idempotency.Key) (idempotency.Record, bool, error) {
	if key == "" || s.idem == nil {
		return idempotency.Record{}, false, nil
	}
	rec, ok, err := s.idem.Get(ctx, key)
	if err != nil {
		return idempotency.Record{}, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return rec, ok, nil
}

// remember caches a committed result. The commit already happened, so a
// cache failure is logged rather than returned.
func (s *Service) remember(ctx context.Context, key idempotency.Key, op idempotency.Operation, a domain.Appointment) {
	if key == "" || s.idem == nil {
		return
	}
	rec := idempotency.Record{Operation: op, Appointment: a, CreatedAt: s.clock.Now()}
	if err := s.idem.Put(ctx, key, rec); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("idempotency_key", string(key)).
			Str("appointment_id", string(a.ID)).
			Msg("failed to store idempotency record")
	}
}

func (s *Service) publish(ctx context.Context, typ events.Type, a domain.Appointment) {
	if s.events == nil {
		return
	}
	e := events.Event{
		ID:            s.newEventID(),
		Type:          typ,
		AppointmentID: a.ID,
		OccurredAt:    s.clock.Now(),
		Appointment:   a,
	}
	if err := s.events.Publish(ctx, e); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("event_type", string(typ)).
			Str("appointment_id", string(a.ID)).
			Msg("failed to publish appointment event")
	}
}
