package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/ayushbhandari/event-tickets/internal/auth"
	"github.com/ayushbhandari/event-tickets/internal/config"
	"github.com/ayushbhandari/event-tickets/internal/db"
	"github.com/ayushbhandari/event-tickets/internal/events"
	httpapi "github.com/ayushbhandari/event-tickets/internal/http"
	"github.com/ayushbhandari/event-tickets/internal/logger"
	"github.com/ayushbhandari/event-tickets/internal/media"
	"github.com/ayushbhandari/event-tickets/internal/memory"
)

// backend is what both stores offer the auth service and the router.
type backend interface {
	httpapi.Store
	auth.UserStore
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	var store backend
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("STORE=memory, data is lost on restart")
		store = memory.New()
	default:
		client, err := db.OpenMongo(ctx, cfg.Mongo.URL, cfg.Mongo.Timeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()
		log.Info().Str("database", cfg.Mongo.Database).Msg("MongoDB connected")
		store = events.NewRepository(client.Database(cfg.Mongo.Database))
	}

	sessions, err := auth.NewService(store, cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("auth service")
	}

	var uploader media.Uploader = media.Disabled{}
	if cfg.Cloudinary.Enabled() {
		uploader, err = media.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			log.Fatal().Err(err).Msg("cloudinary")
		}
	} else {
		log.Warn().Msg("CLOUDINARY_* not set, event image uploads are disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := httpapi.NewRouter(httpapi.Options{
		Store:        store,
		Sessions:     sessions,
		Uploader:     uploader,
		CORSOrigin:   cfg.CORSOrigin,
		CookieSecure: cfg.CookieSecure,
		Registry:     reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		srvErr <- srv.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
