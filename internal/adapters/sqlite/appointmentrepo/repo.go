package appointmentrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicflow/scheduling-api/internal/adapters/sqlite"
	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
)

const selectColumns = `id, patient_name, appt_date, appt_time, duration, doctor_name, status, mode`

// Repo is a SQLite implementation of appointmentrepo.Repository.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repo) Create(ctx context.Context, a domain.Appointment) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if a.Blocks() {
		taken, err := collides(ctx, tx, a)
		if err != nil {
			return err
		}
		if taken {
			return appointmentrepo.ErrSlotTaken
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (id, patient_name, appt_date, appt_time, duration, doctor_name, status, mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(a.ID), a.PatientName, a.Date, a.Time, a.Duration, a.DoctorName, string(a.Status), string(a.Mode))
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return appointmentrepo.ErrAlreadyExists
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return tx.Commit()
}

func (r *Repo) UpdateStatus(ctx context.Context, id domain.AppointmentID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if r.db == nil {
		return domain.Appointment{}, errors.New("nil sqlite db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Appointment{}, err
	}
	defer func() { _ = tx.Rollback() }()

	a, err := scanAppointment(tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM appointments WHERE id = ?`, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, appointmentrepo.ErrNotFound
		}
		return domain.Appointment{}, err
	}

	revived := !a.Blocks() && status != domain.StatusCancelled
	a.Status = status
	if revived {
		taken, err := collides(ctx, tx, a)
		if err != nil {
			return domain.Appointment{}, err
		}
		if taken {
			return domain.Appointment{}, appointmentrepo.ErrSlotTaken
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, string(status), string(id)); err != nil {
		return domain.Appointment{}, fmt.Errorf("update appointment status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.AppointmentID) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appointmentrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AppointmentID) (domain.Appointment, error) {
	if r.db == nil {
		return domain.Appointment{}, errors.New("nil sqlite db")
	}
	a, err := scanAppointment(r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM appointments WHERE id = ?`, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, appointmentrepo.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Appointment, error) {
	if r.db == nil {
		return nil, errors.New("nil sqlite db")
	}
	where, args := filterClause(f)
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM appointments`+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment row: %w", err)
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
	if f.Date.IsSpecified() {
		conds, args = append(conds, "appt_date = ?"), append(args, f.Date.Value())
	}
	if f.Status.IsSpecified() {
		conds, args = append(conds, "status = ?"), append(args, string(f.Status.Value()))
	}
	if f.DoctorName.IsSpecified() {
		conds, args = append(conds, "doctor_name = ?"), append(args, f.DoctorName.Value())
	}
	if f.DateFrom.IsSpecified() {
		conds, args = append(conds, "appt_date >= ?"), append(args, f.DateFrom.Value())
	}
	if f.DateTo.IsSpecified() {
		conds, args = append(conds, "appt_date <= ?"), append(args, f.DateTo.Value())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func collides(ctx context.Context, tx *sql.Tx, a domain.Appointment) (bool, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM appointments
		WHERE doctor_name = ? AND appt_date = ? AND status <> ? AND id <> ?
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

func scanAppointment(row scanner) (domain.Appointment, error) {
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
