package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"github.com/rs/zerolog"

	"github.com/clinicflow/scheduling-api/internal/app/appointments"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps service errors to responses. Anything that is not an
// *appointments.Error is logged and reported as a 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if ae := (*appointments.Error)(nil); errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func writeValidation(w http.ResponseWriter, r *http.Request, field, msg string) {
	writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed: "+msg, map[string]any{field: msg})
}

func writeMalformed(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusBadRequest, "MALFORMED_REQUEST", "request body must be a JSON object", map[string]any{"cause": err.Error()})
}
