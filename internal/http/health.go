package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ayushbhandari/event-tickets/internal/logger"
)

const healthTimeout = 2 * time.Second

func (r *Router) handleTest(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, "test ok")
}

type healthResponse struct {
	OK    bool   `json:"ok"`
	Store string `json:"store"`
}

// handleHealth reports whether the document store answers a ping.
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), healthTimeout)
	defer cancel()

	if err := r.store.Ping(ctx); err != nil {
		logger.FromContext(req.Context()).Warn().Err(err).Msg("store ping failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{OK: false, Store: "down"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Store: "up"})
}
