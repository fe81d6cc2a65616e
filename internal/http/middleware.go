package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ayushbhandari/event-tickets/internal/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestLogger tags the request with an id, stores a logger carrying it in
// the context and logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(requestIDHeader)
		if id == "" {
			id = logger.NewRequestID()
		}
		w.Header().Set(requestIDHeader, id)

		l := log.Logger.With().Str("request_id", id).Logger()
		req = req.WithContext(l.WithContext(req.Context()))

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		l.Info().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
