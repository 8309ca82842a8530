package appointmentrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/clinicflow/scheduling-api/internal/adapters/postgres"
	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
)

const selectColumns = `id, patient_name, appt_date, appt_time, duration, doctor_name, status, mode`

// Repo is a Postgres implementation of appointmentrepo.Repository.
//
// Writes that can create an overlap take a transaction-scoped advisory lock
// on (doctor, date) and re-check blocking records before committing, so two
// API processes sharing a database cannot double-book a doctor.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, a domain.Appointment) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if a.Blocks() {
		if err := lockSlot(ctx, tx, a); err != nil {
			return err
		}
		taken, err := collides(ctx, tx, a)
		if err != nil {
			return err
		}
		if taken {
			return appointmentrepo.ErrSlotTaken
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_name, appt_date, appt_time, duration, doctor_name, status, mode)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		string(a.ID),
		a.PatientName,
		a.Date,
		a.Time,
		a.Duration,
		a.DoctorName,
		string(a.Status),
		string(a.Mode),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return appointmentrepo.ErrAlreadyExists
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *Repo) UpdateStatus(ctx context.Context, id domain.AppointmentID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if r.pool == nil {
		return domain.Appointment{}, errors.New("nil postgres pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAppointment(tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Appointment{}, appointmentrepo.ErrNotFound
		}
		return domain.Appointment{}, err
	}

	revived := !a.Blocks() && status != domain.StatusCancelled
	a.Status = status
	if revived {
		if err := lockSlot(ctx, tx, a); err != nil {
			return domain.Appointment{}, err
		}
		taken, err := collides(ctx, tx, a)
		if err != nil {
			return domain.Appointment{}, err
		}
		if taken {
			return domain.Appointment{}, appointmentrepo.ErrSlotTaken
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, string(id), string(status)); err != nil {
		return domain.Appointment{}, fmt.Errorf("update appointment status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.AppointmentID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return appointmentrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AppointmentID) (domain.Appointment, error) {
	if r.pool == nil {
		return domain.Appointment{}, errors.New("nil postgres pool")
	}
	a, err := scanAppointment(r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM appointments WHERE id = $1`, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Appointment{}, appointmentrepo.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Appointment, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	where, args := filterClause(f)
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM appointments`+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func filterClause(f domain.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(expr string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	if f.Date.IsSpecified() {
		add("appt_date = $%d", f.Date.Value())
	}
	if f.Status.IsSpecified() {
		add("status = $%d", string(f.Status.Value()))
	}
	if f.DoctorName.IsSpecified() {
		add("doctor_name = $%d", f.DoctorName.Value())
	}
	if f.DateFrom.IsSpecified() {
		add("appt_date >= $%d", f.DateFrom.Value())
	}
	if f.DateTo.IsSpecified() {
		add("appt_date <= $%d", f.DateTo.Value())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func lockSlot(ctx context.Context, tx pgx.Tx, a domain.Appointment) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, a.DoctorName+"|"+a.Date); err != nil {
		return fmt.Errorf("lock slot: %w", err)
	}
	return nil
}

func collides(ctx context.Context, tx pgx.Tx, a domain.Appointment) (bool, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+selectColumns+`
		FROM appointments
		WHERE doctor_name = $1 AND appt_date = $2 AND status <> $3 AND id <> $4
	`, a.DoctorName, a.Date, string(domain.StatusCancelled), string(a.ID))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		other, err := scanAppointment(rows)
		if err != nil {
			return false, err
		}
		if domain.Collides(other, a) {
			return true, nil
		}
	}
	return false, rows.Err()
}

func scanAppointment(row pgx.Row) (domain.Appointment, error) {
	var (
		a      domain.Appointment
		id     string
		status string
		mode   string
	)
	if err := row.Scan(&id, &a.PatientName, &a.Date, &a.Time, &a.Duration, &a.DoctorName, &status, &mode); err != nil {
		return domain.Appointment{}, err
	}
	a.ID = domain.AppointmentID(id)
	a.Status = domain.AppointmentStatus(status)
	a.Mode = domain.AppointmentMode(mode)
	return a, nil
}
