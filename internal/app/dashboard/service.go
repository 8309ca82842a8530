package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
)

const (
	peakHourLimit   = 3
	busyDayLimit    = 5
	recentLimit     = 5
	recentActionTag = "scheduled"
)

type Activity struct {
	ID          domain.AppointmentID     `json:"id"`
	PatientName string                   `json:"patientName"`
	Date        string                   `json:"date"`
	Time        string                   `json:"time"`
	DoctorName  string                   `json:"doctorName"`
	Status      domain.AppointmentStatus `json:"status"`
	Action      string                   `json:"action"`
}

type Patterns struct {
	AverageDuration    float64  `json:"averageDuration"`
	MostCommonDuration int      `json:"mostCommonDuration"`
	PeakHours          []int    `json:"peakHours"`
	BusyDays           []string `json:"busyDays"`
}

type Metrics struct {
	TotalAppointments  int                              `json:"totalAppointments"`
	StatusCounts       map[domain.AppointmentStatus]int `json:"statusCounts"`
	ModeCounts         map[domain.AppointmentMode]int   `json:"modeCounts"`
	DoctorCounts       map[string]int                   `json:"doctorCounts"`
	RecentActivity     []Activity                       `json:"recentActivity"`
	SchedulingPatterns Patterns                         `json:"schedulingPatterns"`
}

// Service computes dashboard metrics. It only reads.
type Service struct {
	repo appointmentrepo.Repository
}

func NewService(repo appointmentrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Metrics recomputes every figure over the full store on each call.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	all, err := s.repo.List(ctx, domain.Filter{})
	if err != nil {
		return Metrics{}, fmt.Errorf("list appointments: %w", err)
	}
	return Compute(all), nil
}

// Compute reduces a snapshot of appointments (in store order) to Metrics.
// Ties in every ranking go to the value seen first.
func Compute(all []domain.Appointment) Metrics {
	m := Metrics{
		TotalAppointments: len(all),
		StatusCounts:      make(map[domain.AppointmentStatus]int, len(domain.Statuses)),
		ModeCounts:        make(map[domain.AppointmentMode]int, len(domain.Modes)),
		DoctorCounts:      make(map[string]int),
		RecentActivity:    []Activity{},
		SchedulingPatterns: Patterns{
			PeakHours: []int{},
			BusyDays:  []string{},
		},
	}
	for _, st := range domain.Statuses {
		m.StatusCounts[st] = 0
	}
	for _, md := range domain.Modes {
		m.ModeCounts[md] = 0
	}
	if len(all) == 0 {
		return m
	}

	var (
		durations tally[int]
		hours     tally[int]
		days      tally[string]
		sum       int
	)
	for _, a := range all {
		if a.Status.Valid() {
			m.StatusCounts[a.Status]++
		}
		if a.Mode.Valid() {
			m.ModeCounts[a.Mode]++
		}
		m.DoctorCounts[a.DoctorName]++

		sum += a.Duration
		durations.add(a.Duration)
		if h, ok := hourOf(a.Time); ok {
			hours.add(h)
		}
		if a.Date != "" {
			days.add(a.Date)
		}
	}

	m.SchedulingPatterns.AverageDuration = math.Round(float64(sum)/float64(len(all))*10) / 10
	if top := durations.top(1); len(top) == 1 {
		m.SchedulingPatterns.MostCommonDuration = top[0]
	}
	m.SchedulingPatterns.PeakHours = hours.top(peakHourLimit)
	m.SchedulingPatterns.BusyDays = days.top(busyDayLimit)
	m.RecentActivity = recent(all, recentLimit)
	return m
}

func hourOf(clock string) (int, bool) {
	h, _, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	return n, true
}

// recent returns the n latest appointments by (date, time), newest first.
func recent(all []domain.Appointment, n int) []Activity {
	sorted := append([]domain.Appointment(nil), all...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].Time > sorted[j].Time
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]Activity, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, Activity{
			ID:          a.ID,
			PatientName: a.PatientName,
			Date:        a.Date,
			Time:        a.Time,
			DoctorName:  a.DoctorName,
			Status:      a.Status,
			Action:      recentActionTag,
		})
	}
	return out
}

// tally counts values and remembers first-seen order for tie breaks.
type tally[K comparable] struct {
	order  []K
	counts map[K]int
}

func (t *tally[K]) add(k K) {
	if t.counts == nil {
		t.counts = make(map[K]int)
	}
	if _, ok := t.counts[k]; !ok {
		t.order = append(t.order, k)
	}
	t.counts[k]++
}

func (t *tally[K]) top(n int) []K {
	ranked := append([]K(nil), t.order...)
	sort.SliceStable(ranked, func(i, j int) bool { return t.counts[ranked[i]] > t.counts[ranked[j]] })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []K{}
	}
	return ranked
}
