// Package seed loads the demo appointment set used in development.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
)

// Appointments returns a fresh copy of the demo records in store order.
func Appointments() []domain.Appointment {
	return []domain.Appointment{
		{ID: "apt_001", PatientName: "John Smith", Date: "2024-01-15", Time: "09:00", Duration: 30, DoctorName: "Dr. Johnson", Status: domain.StatusConfirmed, Mode: domain.ModeInPerson},
		{ID: "apt_002", PatientName: "Sarah Wilson", Date: "2024-01-15", Time: "10:30", Duration: 45, DoctorName: "Dr. Smith", Status: domain.StatusScheduled, Mode: domain.ModeOnline},
		{ID: "apt_003", PatientName: "Michael Brown", Date: "2024-01-16", Time: "14:00", Duration: 60, DoctorName: "Dr. Johnson", Status: domain.StatusUpcoming, Mode: domain.ModeInPerson},
		{ID: "apt_004", PatientName: "Emily Davis", Date: "2024-01-16", Time: "11:15", Duration: 30, DoctorName: "Dr. Williams", Status: domain.StatusConfirmed, Mode: domain.ModeOnline},
		{ID: "apt_005", PatientName: "Robert Taylor", Date: "2024-01-17", Time: "08:30", Duration: 45, DoctorName: "Dr. Smith", Status: domain.StatusScheduled, Mode: domain.ModeInPerson},
		{ID: "apt_006", PatientName: "Lisa Anderson", Date: "2024-01-17", Time: "13:45", Duration: 30, DoctorName: "Dr. Johnson", Status: domain.StatusCancelled, Mode: domain.ModeOnline},
		{ID: "apt_007", PatientName: "David Martinez", Date: "2024-01-18", Time: "10:00", Duration: 60, DoctorName: "Dr. Williams", Status: domain.StatusUpcoming, Mode: domain.ModeInPerson},
		{ID: "apt_008", PatientName: "Jennifer Garcia", Date: "2024-01-18", Time: "15:30", Duration: 45, DoctorName: "Dr. Smith", Status: domain.StatusConfirmed, Mode: domain.ModeOnline},
		{ID: "apt_009", PatientName: "Christopher Lee", Date: "2024-01-19", Time: "09:15", Duration: 30, DoctorName: "Dr. Johnson", Status: domain.StatusScheduled, Mode: domain.ModeInPerson},
		{ID: "apt_010", PatientName: "Amanda White", Date: "2024-01-19", Time: "16:00", Duration: 45, DoctorName: "Dr. Williams", Status: domain.StatusUpcoming, Mode: domain.ModeOnline},
		{ID: "apt_011", PatientName: "Kevin Thompson", Date: "2024-01-20", Time: "11:30", Duration: 60, DoctorName: "Dr. Smith", Status: domain.StatusConfirmed, Mode: domain.ModeInPerson},
		{ID: "apt_012", PatientName: "Michelle Rodriguez", Date: "2024-01-20", Time: "14:15", Duration: 30, DoctorName: "Dr. Johnson", Status: domain.StatusScheduled, Mode: domain.ModeOnline},
	}
}

// Load inserts the demo records into repo and returns how many were new.
// Records already present are skipped, so Load is safe to run on every start.
func Load(ctx context.Context, repo appointmentrepo.Repository) (int, error) {
	n := 0
	for _, a := range Appointments() {
		err := repo.Create(ctx, a)
		switch {
		case err == nil:
			n++
		case errors.Is(err, appointmentrepo.ErrAlreadyExists), errors.Is(err, appointmentrepo.ErrSlotTaken):
		default:
			return n, fmt.Errorf("seed %s: %w", a.ID, err)
		}
	}
	return n, nil
}
