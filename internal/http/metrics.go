package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	likeToggles *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		likeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_like_toggles_total",
			Help: "Applied like toggles by direction.",
		}, []string{"direction"}),
	}
	reg.MustRegister(m.requests, m.duration, m.likeToggles)
	return m
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveToggle counts an applied toggle; liked is the state after it.
func (m *Metrics) ObserveToggle(liked bool) {
	direction := "unlike"
	if liked {
		direction = "like"
	}
	m.likeToggles.WithLabelValues(direction).Inc()
}
