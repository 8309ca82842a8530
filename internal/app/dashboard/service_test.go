package dashboard_test

import (
	"context"
	"reflect"
	"testing"

	memappointmentrepo "github.com/clinicflow/scheduling-api/internal/adapters/memory/appointmentrepo"
	"github.com/clinicflow/scheduling-api/internal/app/dashboard"
	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/platform/seed"
)

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	m := dashboard.Compute(nil)
	if m.TotalAppointments != 0 {
		t.Fatalf("total=%d", m.TotalAppointments)
	}
	if len(m.StatusCounts) != 4 || len(m.ModeCounts) != 2 {
		t.Fatalf("status=%v mode=%v, want every key present", m.StatusCounts, m.ModeCounts)
	}
	if m.SchedulingPatterns.PeakHours == nil || m.SchedulingPatterns.BusyDays == nil || m.RecentActivity == nil {
		t.Fatalf("empty lists must be non-nil: %+v", m)
	}
}

func TestCompute_TiesGoToFirstSeen(t *testing.T) {
	t.Parallel()

	all := []domain.Appointment{
		{ID: "1", Date: "2024-01-15", Time: "14:00", Duration: 45, DoctorName: "Dr. A", Status: domain.StatusScheduled, Mode: domain.ModeOnline},
		{ID: "2", Date: "2024-01-16", Time: "09:00", Duration: 30, DoctorName: "Dr. B", Status: domain.StatusConfirmed, Mode: domain.ModeInPerson},
		{ID: "3", Date: "2024-01-16", Time: "09:30", Duration: 30, DoctorName: "Dr. A", Status: domain.StatusCancelled, Mode: domain.ModeOnline},
		{ID: "4", Date: "2024-01-15", Time: "14:30", Duration: 45, DoctorName: "Dr. A", Status: domain.StatusUpcoming, Mode: domain.ModeOnline},
		{ID: "5", Date: "2024-01-17", Time: "11:00", Duration: 20, DoctorName: "Dr. C", Status: domain.StatusScheduled, Mode: domain.ModeOnline},
	}
	m := dashboard.Compute(all)

	if m.SchedulingPatterns.MostCommonDuration != 45 {
		t.Fatalf("mostCommon=%d, want 45 (first seen of tied 45/30)", m.SchedulingPatterns.MostCommonDuration)
	}
	if got, want := m.SchedulingPatterns.PeakHours, []int{14, 9, 11}; !reflect.DeepEqual(got, want) {
		t.Fatalf("peakHours=%v, want %v", got, want)
	}
	if got, want := m.SchedulingPatterns.BusyDays, []string{"2024-01-15", "2024-01-16", "2024-01-17"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("busyDays=%v, want %v", got, want)
	}
	if m.SchedulingPatterns.AverageDuration != 34 {
		t.Fatalf("avg=%v, want 34", m.SchedulingPatterns.AverageDuration)
	}
	if m.DoctorCounts["Dr. A"] != 3 || m.ModeCounts[domain.ModeOnline] != 4 || m.StatusCounts[domain.StatusScheduled] != 2 {
		t.Fatalf("counts: doctors=%v modes=%v statuses=%v", m.DoctorCounts, m.ModeCounts, m.StatusCounts)
	}
	if len(m.RecentActivity) != 5 || m.RecentActivity[0].ID != "5" || m.RecentActivity[1].ID != "3" || m.RecentActivity[4].ID != "1" {
		t.Fatalf("recent=%+v", m.RecentActivity)
	}
}

func TestService_MetricsOverSeedData(t *testing.T) {
	t.Parallel()

	repo := memappointmentrepo.NewRepo()
	if _, err := seed.Load(context.Background(), repo); err != nil {
		t.Fatalf("seed.Load() err=%v", err)
	}
	m, err := dashboard.NewService(repo).Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics() err=%v", err)
	}
	if m.TotalAppointments != 12 {
		t.Fatalf("total=%d", m.TotalAppointments)
	}
	if m.StatusCounts[domain.StatusCancelled] != 1 || m.StatusCounts[domain.StatusConfirmed] != 4 {
		t.Fatalf("statusCounts=%v", m.StatusCounts)
	}
	if m.SchedulingPatterns.AverageDuration != 42.5 || m.SchedulingPatterns.MostCommonDuration != 30 {
		t.Fatalf("patterns=%+v", m.SchedulingPatterns)
	}
	if m.RecentActivity[0].ID != "apt_012" {
		t.Fatalf("recent[0]=%+v", m.RecentActivity[0])
	}
}
