package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayushbhandari/event-tickets/internal/auth"
	"github.com/ayushbhandari/event-tickets/internal/events"
	"github.com/ayushbhandari/event-tickets/internal/media"
)

const (
	tokenCookie   = "token"
	maxUploadSize = 10 << 20
)

// Store is the persistence the API needs. Both the Mongo repository and the
// in-memory store satisfy it.
type Store interface {
	Ping(ctx context.Context) error

	CreateEvent(ctx context.Context, e *events.Event) (*events.Event, error)
	ListEvents(ctx context.Context) ([]events.Event, error)
	GetEvent(ctx context.Context, id string) (*events.Event, error)
	ToggleLike(ctx context.Context, eventID, userID string) (*events.Event, error)

	CreateTicket(ctx context.Context, t events.Ticket) (events.Ticket, error)
	ListTicketsByID(ctx context.Context, id string) ([]events.Ticket, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]events.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// Sessions registers users and resolves session tokens.
type Sessions interface {
	Register(ctx context.Context, in auth.RegisterInput) (*events.User, error)
	Login(ctx context.Context, email, password string) (string, *events.User, error)
	Verify(token string) (*auth.Claims, error)
	Profile(ctx context.Context, token string) (*events.User, error)
}

type Options struct {
	Store    Store
	Sessions Sessions
	Uploader media.Uploader

	CORSOrigin   string
	CookieSecure bool

	// Registry receives the API metrics and backs GET /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
}

type Router struct {
	mux      *chi.Mux
	store    Store
	sessions Sessions
	uploader media.Uploader
	metrics  *Metrics

	cookieSecure bool
}

func NewRouter(opts Options) http.Handler {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	uploader := opts.Uploader
	if uploader == nil {
		uploader = media.Disabled{}
	}

	r := &Router{
		mux:          chi.NewRouter(),
		store:        opts.Store,
		sessions:     opts.Sessions,
		uploader:     uploader,
		metrics:      NewMetrics(reg),
		cookieSecure: opts.CookieSecure,
	}

	r.mux.Use(RequestLogger)
	r.mux.Use(middleware.RealIP)
	r.mux.Use(middleware.Recoverer)
	r.mux.Use(r.metrics.Middleware)
	r.mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.routes(reg)
	return r.mux
}

func (r *Router) routes(reg *prometheus.Registry) {
	r.mux.Get("/test", r.handleTest)
	r.mux.Get("/health", r.handleHealth)
	r.mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.mux.Post("/register", r.handleRegister)
	r.mux.Post("/login", r.handleLogin)
	r.mux.Get("/profile", r.handleProfile)
	r.mux.Post("/logout", r.handleLogout)

	r.mux.Post("/createEvent", r.handleCreateEvent)
	r.mux.Get("/createEvent", r.handleListEvents)
	r.mux.Get("/events", r.handleListEvents)
	r.mux.Route("/event/{id}", func(ev chi.Router) {
		ev.Get("/", r.handleGetEvent)
		ev.Get("/ordersummary", r.handleGetEvent)
		ev.Get("/ordersummary/paymentsummary", r.handleGetEvent)
		ev.Post("/like", r.handleToggleLike)
	})

	r.mux.Post("/tickets", r.handleCreateTicket)
	r.mux.Get("/tickets/{id}", r.handleListTicketsByID)
	r.mux.Get("/tickets/user/{userId}", r.handleListUserTickets)
	r.mux.Delete("/tickets/{id}", r.handleDeleteTicket)
}
