package appointments

import (
	"github.com/clinicflow/scheduling-api/internal/domain"
)

// DetectConflicts returns, in store order, every blocking record in existing
// that collides with candidate. A record sharing candidate's id is skipped so
// a record never conflicts with itself.
func DetectConflicts(candidate domain.Appointment, existing []domain.Appointment) []domain.Appointment {
	var out []domain.Appointment
	for _, e := range existing {
		if candidate.ID != "" && e.ID == candidate.ID {
			continue
		}
		if domain.Collides(e, candidate) {
			out = append(out, e)
		}
	}
	return out
}

// overlapIndex maps each record id to the records it collides with, and
// counts colliding pairs.
func overlapIndex(list []domain.Appointment) (map[domain.AppointmentID][]domain.Appointment, int) {
	idx := make(map[domain.AppointmentID][]domain.Appointment)
	pairs := 0
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if !domain.Collides(list[i], list[j]) {
				continue
			}
			pairs++
			idx[list[i].ID] = append(idx[list[i].ID], list[j])
			idx[list[j].ID] = append(idx[list[j].ID], list[i])
		}
	}
	return idx, pairs
}

// overlapGroups partitions colliding records into connected groups. Groups
// and their members follow store order.
func overlapGroups(list []domain.Appointment) [][]domain.Appointment {
	parent := make([]int, len(list))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	inAny := make([]bool, len(list))
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if !domain.Collides(list[i], list[j]) {
				continue
			}
			inAny[i], inAny[j] = true, true
			ri, rj := find(i), find(j)
			if ri != rj {
				if rj < ri {
					ri, rj = rj, ri
				}
				parent[rj] = ri
			}
		}
	}

	var (
		groups [][]domain.Appointment
		slot   = make(map[int]int)
	)
	for i := range list {
		if !inAny[i] {
			continue
		}
		root := find(i)
		g, ok := slot[root]
		if !ok {
			g = len(groups)
			slot[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], list[i])
	}
	return groups
}
