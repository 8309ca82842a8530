package appointments

import (
	"slices"
	"sort"
	"strings"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

const maxRangeDays = 365

var (
	listFilterKeys    = []string{"date", "status", "doctorName"}
	overlapFilterKeys = []string{"date", "status", "doctorName", "start_date", "end_date"}
)

// ParseListFilter builds a Filter from query parameters accepted by List.
// Empty values are treated as absent.
func ParseListFilter(params map[string]string) (domain.Filter, error) {
	return parseFilter(params, listFilterKeys)
}

// ParseOverlapFilter is ParseListFilter plus an inclusive start_date/end_date
// range of at most 365 days.
func ParseOverlapFilter(params map[string]string) (domain.Filter, error) {
	return parseFilter(params, overlapFilterKeys)
}

func parseFilter(params map[string]string, allowed []string) (domain.Filter, error) {
	var (
		f  domain.Filter
		fe fieldErrors
	)

	var unknown []string
	for k := range params {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		fe.add("filters", "Invalid filter keys: "+strings.Join(unknown, ", ")+". Valid keys are: "+strings.Join(allowed, ", "))
		return domain.Filter{}, fe.err()
	}

	if v := params["date"]; v != "" {
		if _, err := domain.ParseDate(v); err != nil {
			fe.add("date", "Invalid date format: "+v+". Expected YYYY-MM-DD")
		}
		f.Date = domain.Some(v)
	}
	if v := params["status"]; v != "" {
		if !domain.AppointmentStatus(v).Valid() {
			fe.add("status", "Invalid status: "+v)
		}
		f.Status = domain.Some(domain.AppointmentStatus(v))
	}
	if v := params["doctorName"]; v != "" {
		f.DoctorName = domain.Some(v)
	}

	from, to := params["start_date"], params["end_date"]
	fromOK, toOK := from != "", to != ""
	if fromOK {
		if _, err := domain.ParseDate(from); err != nil {
			fe.add("start_date", "Invalid date format: "+from+". Expected YYYY-MM-DD")
			fromOK = false
		} else {
			f.DateFrom = domain.Some(from)
		}
	}
	if toOK {
		if _, err := domain.ParseDate(to); err != nil {
			fe.add("end_date", "Invalid date format: "+to+". Expected YYYY-MM-DD")
			toOK = false
		} else {
			f.DateTo = domain.Some(to)
		}
	}
	if fromOK && toOK {
		start, _ := domain.ParseDate(from)
		end, _ := domain.ParseDate(to)
		switch {
		case start.After(end):
			fe.add("dateRange", "Start date cannot be after end date")
		case end.Sub(start).Hours()/24 > maxRangeDays:
			fe.add("dateRange", "Date range cannot exceed 365 days")
		}
	}

	if err := fe.err(); err != nil {
		return domain.Filter{}, err
	}
	return f, nil
}
