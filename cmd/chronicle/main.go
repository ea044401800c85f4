package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/chronicle/pkg/config"
	"github.com/platinummonkey/chronicle/pkg/event"
	"github.com/platinummonkey/chronicle/pkg/httputil"
	"github.com/platinummonkey/chronicle/pkg/middleware"
	"github.com/platinummonkey/chronicle/pkg/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger("info", os.Stderr).WithError(err).Fatal("failed to load configuration")
	}

	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)
	log := logger.WithField("service", "chronicle")

	db, err := event.Open(cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()
	log.Info("database initialized, migrations applied")

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	store := event.NewDBStore(db)
	service := event.NewService(store, log)
	handlers := event.NewHandlers(service, log).WithMetrics(metrics)
	auth := middleware.NewScopeAuth(cfg.APITokens)
	if !auth.Enabled() {
		log.Warn("no API tokens configured; authentication disabled")
	}

	router := mux.NewRouter()
	handlers.RegisterRoutes(router, auth)

	if !cfg.IsProductionLike() {
		handlers.RegisterAdminRoutes(router, auth)
		log.WithField("environment", cfg.Environment).Info("registered development endpoints")
	}

	if cfg.MetricsEnabled {
		router.Handle("/metrics", observability.MetricsHandler(registry)).Methods("GET")
	}
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			httputil.WriteServiceUnavailable(w, "database unreachable")
			return
		}
		httputil.WriteSuccessMessage(w, "ok", nil)
	}).Methods("GET")

	handler := httputil.Chain(
		httputil.RecoveryMiddleware(log),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(log),
		observability.HTTPMetricsMiddleware(metrics),
	)(router)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("chronicle audit event API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
