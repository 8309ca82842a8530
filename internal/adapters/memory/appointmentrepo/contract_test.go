package appointmentrepo

import (
	"testing"

	"github.com/clinicflow/scheduling-api/internal/adapters/contracttest"
	appointmentrepoport "github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
)

func TestContract_AppointmentRepo(t *testing.T) {
	contracttest.RunAppointmentRepo(t, func(t *testing.T) (appointmentrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
