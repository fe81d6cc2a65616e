package http

import (
	"encoding/json"
	"net/http"

	"github.com/ayushbhandari/event-tickets/internal/apperr"
	"github.com/ayushbhandari/event-tickets/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeAppError maps err to its status. Server-side failures are logged and
// answered with fallback so store internals never reach the client.
func writeAppError(w http.ResponseWriter, req *http.Request, err error, fallback string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(req.Context()).Error().Err(err).Msg(fallback)
		writeError(w, status, fallback)
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(req *http.Request, v any) error {
	dec := json.NewDecoder(req.Body)
	return dec.Decode(v)
}
