package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/eventdesk/internal/auth"
	"github.com/geocoder89/eventdesk/internal/cache"
	"github.com/geocoder89/eventdesk/internal/config"
	"github.com/geocoder89/eventdesk/internal/db"
	httpx "github.com/geocoder89/eventdesk/internal/http"
	"github.com/geocoder89/eventdesk/internal/observability"
	"github.com/geocoder89/eventdesk/internal/repo/mongodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	// tracing is best effort; the exporter buffers until a collector shows up
	shutdownTracer, err := observability.InitTracer(context.Background(), "eventdesk", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracer init failed", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// Mongo connection

	client, err := db.Connect(cfg.MongoURI)

	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}

	database := client.Database(cfg.MongoDB)

	bootCtx, cancelBoot := config.WithTimeout(10 * time.Second)

	if err := db.EnsureIndexes(bootCtx, database); err != nil {
		log.Error("ensure indexes failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(bootCtx, database, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	cancelBoot()

	// metrics registry

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// wire up repositories and collaborators

	deps := httpx.Deps{
		Events:         mongodb.NewEventsRepo(database, prom),
		Users:          mongodb.NewUsersRepo(database, prom),
		Refresh:        mongodb.NewRefreshTokensRepo(database, prom),
		JWT:            auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL()),
		Metrics:        prom,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ListCache:      cache.New(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		Ready: func() error {
			ctx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()

			return client.Ping(ctx, readpref.Primary())
		},
	}

	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}

		if err := client.Disconnect(ctx); err != nil {
			log.Error("mongo disconnect failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
