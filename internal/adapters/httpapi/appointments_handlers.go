package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/clinicflow/scheduling-api/internal/app/appointments"
	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxBodyBytes      = 1 << 20
)

func (s *Server) ListAppointments(w http.ResponseWriter, r *http.Request) {
	params := queryParams(r)
	f, err := appointments.ParseListFilter(params)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	list, err := s.Appointments.List(r.Context(), f)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	list = nonNil(list)
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: list, Count: counted(len(list)), Filters: params})
}

func (s *Server) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := domain.AppointmentID(chi.URLParam(r, "id"))
	a, ok, err := s.Appointments.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "APPOINTMENT_NOT_FOUND", "Appointment not found: "+string(id), map[string]any{"id": string(id)})
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeObject(r)
	if err != nil {
		writeMalformed(w, r, err)
		return
	}
	a, err := s.Appointments.Create(r.Context(), payload, idempotencyKey(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Data: a, Message: "Appointment created successfully"})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var body updateStatusRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeMalformed(w, r, err)
		return
	}
	id := domain.AppointmentID(chi.URLParam(r, "id"))
	a, err := s.Appointments.UpdateStatus(r.Context(), id, body.Status, idempotencyKey(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: a, Message: "Appointment status updated to " + string(a.Status)})
}

func (s *Server) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := domain.AppointmentID(chi.URLParam(r, "id"))
	if err := s.Appointments.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: map[string]string{"id": string(id)}, Message: "Appointment deleted successfully"})
}

func (s *Server) ListOverlaps(w http.ResponseWriter, r *http.Request) {
	f, err := appointments.ParseOverlapFilter(queryParams(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	rep, err := s.Appointments.Overlaps(r.Context(), f)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	rep.Appointments = nonNil(rep.Appointments)
	writeData(w, http.StatusOK, rep)
}

func (s *Server) ListTimeSlots(w http.ResponseWriter, r *http.Request) {
	var (
		date   string
		doctor *string
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "date", q, &date); err != nil {
		writeValidation(w, r, "date", "Date is required")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "doctorName", q, &doctor); err != nil {
		writeValidation(w, r, "doctorName", "Doctor name must be a string")
		return
	}
	opt := domain.Unspecified[string]()
	if doctor != nil && *doctor != "" {
		opt = domain.Some(*doctor)
	}
	slots, err := s.Appointments.TimeSlots(r.Context(), date, opt)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	slots = nonNil(slots)
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: slots, Count: counted(len(slots))})
}

func (s *Server) ConflictSummary(w http.ResponseWriter, r *http.Request) {
	var date *string
	if err := runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &date); err != nil {
		writeValidation(w, r, "date", "Date must be in YYYY-MM-DD format")
		return
	}
	opt := domain.Unspecified[string]()
	if date != nil && *date != "" {
		opt = domain.Some(*date)
	}
	rep, err := s.Appointments.ConflictSummary(r.Context(), opt)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) SlotOccupancy(w http.ResponseWriter, r *http.Request) {
	var maxPerSlot *int
	if err := runtime.BindQueryParameter("form", true, false, "max_per_slot", r.URL.Query(), &maxPerSlot); err != nil {
		writeValidation(w, r, "max_per_slot", "max_per_slot must be an integer")
		return
	}
	params := queryParams(r)
	delete(params, "max_per_slot")
	f, err := appointments.ParseListFilter(params)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	limit := 0
	if maxPerSlot != nil {
		if *maxPerSlot < 1 {
			writeValidation(w, r, "max_per_slot", "max_per_slot must be greater than 0")
			return
		}
		limit = *maxPerSlot
	}
	rep, err := s.Appointments.SlotOccupancy(r.Context(), f, limit)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) DashboardMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.Dashboard.Metrics(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, m)
}

// decodeObject reads a JSON object, keeping numbers as json.Number so the
// validator can tell 30 from 30.5.
func decodeObject(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty request body")
		}
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if payload == nil {
		return nil, errors.New("request body must not be null")
	}
	return payload, nil
}

func idempotencyKey(r *http.Request) idempotency.Key {
	return idempotency.Key(strings.TrimSpace(r.Header.Get(idempotencyHeader)))
}

// queryParams flattens the query string to its first value per key.
func queryParams(r *http.Request) map[string]string {
	q := r.URL.Query()
	out := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
