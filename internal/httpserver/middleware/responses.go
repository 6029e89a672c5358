package middleware

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError answers htmx requests with a JSON error body and everything else with
// plain text.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if HTMXInfoFromContext(r.Context()).IsHTMX {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
		return
	}
	http.Error(w, msg, code)
}
