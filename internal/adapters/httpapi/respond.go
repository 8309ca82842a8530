package httpapi

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps every successful response body.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data"`
	Count   *int              `json:"count,omitempty"`
	Message string            `json:"message,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func counted(n int) *int { return &n }
