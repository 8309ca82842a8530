package appointments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
)

// DefaultMaxPerSlot is the recommended number of appointments per time slot.
const DefaultMaxPerSlot = 3

type OverlapSummary struct {
	Total           int  `json:"total"`
	DistinctDates   int  `json:"distinctDates"`
	DistinctDoctors int  `json:"distinctDoctors"`
	HasOverlaps     bool `json:"hasOverlaps"`
	OverlapCount    int  `json:"overlapCount"`
}

type OverlapReport struct {
	Appointments []domain.Appointment                          `json:"appointments"`
	Overlaps     map[domain.AppointmentID][]domain.Appointment `json:"overlaps"`
	Summary      OverlapSummary                                `json:"summary"`
}

type TimeSlot struct {
	Time         string               `json:"time"`
	Appointments []domain.Appointment `json:"appointments"`
}

type ConflictGroup struct {
	DoctorName   string               `json:"doctorName"`
	Date         string               `json:"date"`
	TimeRange    string               `json:"timeRange"`
	Appointments []domain.Appointment `json:"appointments"`
}

type ConflictReport struct {
	TotalConflicts       int             `json:"totalConflicts"`
	AffectedAppointments int             `json:"affectedAppointments"`
	DoctorsWithConflicts []string        `json:"doctorsWithConflicts"`
	DatesWithConflicts   []string        `json:"datesWithConflicts"`
	Groups               []ConflictGroup `json:"groups"`
}

type SlotGroup struct {
	Date         string               `json:"date"`
	DoctorName   string               `json:"doctorName"`
	Time         string               `json:"time"`
	Count        int                  `json:"count"`
	Appointments []domain.Appointment `json:"appointments"`
}

type OccupancyStats struct {
	TotalSlots      int     `json:"totalSlots"`
	OverbookedCount int     `json:"overbookedCount"`
	MaxInSlot       int     `json:"maxInSlot"`
	AveragePerSlot  float64 `json:"averagePerSlot"`
}

type OccupancyReport struct {
	MaxPerSlot int            `json:"maxPerSlot"`
	Slots      []SlotGroup    `json:"slots"`
	Overbooked []SlotGroup    `json:"overbooked"`
	Statistics OccupancyStats `json:"statistics"`
}

// List returns the records matching every specified field of f, in store order.
func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Appointment, error) {
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// Get returns the record with id. ok is false when no such record exists.
func (s *Service) Get(ctx context.Context, id domain.AppointmentID) (domain.Appointment, bool, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentrepo.ErrNotFound) {
			return domain.Appointment{}, false, nil
		}
		return domain.Appointment{}, false, fmt.Errorf("get appointment: %w", err)
	}
	return a, true, nil
}

// Overlaps lists the records matching f and, for each one, the records in
// that same list it collides with.
func (s *Service) Overlaps(ctx context.Context, f domain.Filter) (OverlapReport, error) {
	list, err := s.List(ctx, f)
	if err != nil {
		return OverlapReport{}, err
	}
	idx, pairs := overlapIndex(list)

	dates := make(map[string]struct{})
	doctors := make(map[string]struct{})
	for _, a := range list {
		dates[a.Date] = struct{}{}
		doctors[a.DoctorName] = struct{}{}
	}
	return OverlapReport{
		Appointments: list,
		Overlaps:     idx,
		Summary: OverlapSummary{
			Total:           len(list),
			DistinctDates:   len(dates),
			DistinctDoctors: len(doctors),
			HasOverlaps:     pairs > 0,
			OverlapCount:    pairs,
		},
	}, nil
}

// TimeSlots groups the appointments on date (optionally for one doctor) by
// start time. Slots are ordered by time; within a slot, longer appointments
// come first.
func (s *Service) TimeSlots(ctx context.Context, date string, doctor domain.Optional[string]) ([]TimeSlot, error) {
	if _, err := domain.ParseDate(date); err != nil {
		return nil, validationError("date", "Invalid date format: "+date+". Expected YYYY-MM-DD")
	}
	list, err := s.List(ctx, domain.Filter{Date: domain.Some(date), DoctorName: doctor})
	if err != nil {
		return nil, err
	}

	var (
		slots []TimeSlot
		pos   = make(map[string]int)
	)
	for _, a := range list {
		i, ok := pos[a.Time]
		if !ok {
			i = len(slots)
			pos[a.Time] = i
			slots = append(slots, TimeSlot{Time: a.Time})
		}
		slots[i].Appointments = append(slots[i].Appointments, a)
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	for i := range slots {
		apps := slots[i].Appointments
		sort.SliceStable(apps, func(a, b int) bool { return apps[a].Duration > apps[b].Duration })
	}
	return slots, nil
}

// ConflictSummary groups colliding appointments (optionally on one date)
// into connected groups for administrative review.
func (s *Service) ConflictSummary(ctx context.Context, date domain.Optional[string]) (ConflictReport, error) {
	if date.IsSpecified() {
		if _, err := domain.ParseDate(date.Value()); err != nil {
			return ConflictReport{}, validationError("date", "Invalid date format: "+date.Value()+". Expected YYYY-MM-DD")
		}
	}
	list, err := s.List(ctx, domain.Filter{Date: date})
	if err != nil {
		return ConflictReport{}, err
	}

	rep := ConflictReport{
		DoctorsWithConflicts: []string{},
		DatesWithConflicts:   []string{},
		Groups:               []ConflictGroup{},
	}
	seenDoctor := make(map[string]bool)
	seenDate := make(map[string]bool)
	for _, g := range overlapGroups(list) {
		rep.Groups = append(rep.Groups, ConflictGroup{
			DoctorName:   g[0].DoctorName,
			Date:         g[0].Date,
			TimeRange:    timeRange(g),
			Appointments: g,
		})
		rep.AffectedAppointments += len(g)
		if !seenDoctor[g[0].DoctorName] {
			seenDoctor[g[0].DoctorName] = true
			rep.DoctorsWithConflicts = append(rep.DoctorsWithConflicts, g[0].DoctorName)
		}
		if !seenDate[g[0].Date] {
			seenDate[g[0].Date] = true
			rep.DatesWithConflicts = append(rep.DatesWithConflicts, g[0].Date)
		}
	}
	rep.TotalConflicts = len(rep.Groups)
	return rep, nil
}

// timeRange renders the span from the earliest start to the latest end in g.
func timeRange(g []domain.Appointment) string {
	lo, hi := math.MaxInt, math.MinInt
	for _, a := range g {
		w, ok := a.Window()
		if !ok {
			continue
		}
		lo = min(lo, w.Start)
		hi = max(hi, w.End)
	}
	if lo > hi {
		return ""
	}
	return domain.FormatClock(lo) + " - " + domain.FormatClock(hi)
}

// SlotOccupancy counts blocking appointments per (date, doctor, start time)
// and flags slots holding more than maxPerSlot. maxPerSlot < 1 uses the default.
func (s *Service) SlotOccupancy(ctx context.Context, f domain.Filter, maxPerSlot int) (OccupancyReport, error) {
	if maxPerSlot < 1 {
		maxPerSlot = DefaultMaxPerSlot
	}
	list, err := s.List(ctx, f)
	if err != nil {
		return OccupancyReport{}, err
	}

	type slotKey struct{ date, doctor, time string }
	var (
		slots []SlotGroup
		pos   = make(map[slotKey]int)
		total int
	)
	for _, a := range list {
		if !a.Blocks() {
			continue
		}
		k := slotKey{a.Date, a.DoctorName, a.Time}
		i, ok := pos[k]
		if !ok {
			i = len(slots)
			pos[k] = i
			slots = append(slots, SlotGroup{Date: a.Date, DoctorName: a.DoctorName, Time: a.Time})
		}
		slots[i].Appointments = append(slots[i].Appointments, a)
		slots[i].Count++
		total++
	}

	rep := OccupancyReport{
		MaxPerSlot: maxPerSlot,
		Slots:      []SlotGroup{},
		Overbooked: []SlotGroup{},
	}
	for _, sg := range slots {
		rep.Slots = append(rep.Slots, sg)
		rep.Statistics.MaxInSlot = max(rep.Statistics.MaxInSlot, sg.Count)
		if sg.Count > maxPerSlot {
			rep.Overbooked = append(rep.Overbooked, sg)
		}
	}
	rep.Statistics.TotalSlots = len(slots)
	rep.Statistics.OverbookedCount = len(rep.Overbooked)
	if len(slots) > 0 {
		rep.Statistics.AveragePerSlot = math.Round(float64(total)/float64(len(slots))*100) / 100
	}
	return rep, nil
}
