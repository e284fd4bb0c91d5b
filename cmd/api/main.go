package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/vidtrack/internal/cache"
	"github.com/geocoder89/vidtrack/internal/config"
	"github.com/geocoder89/vidtrack/internal/db"
	httpx "github.com/geocoder89/vidtrack/internal/http"
	"github.com/geocoder89/vidtrack/internal/http/handlers"
	"github.com/geocoder89/vidtrack/internal/observability"
	mongorepo "github.com/geocoder89/vidtrack/internal/repo/mongo"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing only when an exporter endpoint is configured
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "vidtrack-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()

				if err := shutdownTracer(ctx); err != nil {
					log.Error("tracer shutdown failed", "err", err)
				}
			}()
		}
	}

	// one mongo client for the whole process, injected where needed
	client, err := db.Connect(cfg.MongoURL)

	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}

	defer func() {
		if err := db.Disconnect(client); err != nil {
			log.Error("mongo disconnect failed", "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	usersRepo := mongorepo.NewUsersRepo(client, cfg.MongoDB, mongorepo.WithMetrics(prom))

	{
		ctx, cancel := config.WithTimeout(5 * time.Second)
		if err := usersRepo.EnsureIndexes(ctx); err != nil {
			log.Warn("index creation failed", "err", err)
		}
		cancel()
	}

	mongoPing := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return client.Ping(ctx, readpref.Primary())
	}

	pings := []func() error{mongoPing}

	// redis list cache is optional
	var listCache handlers.ListCache

	if cfg.RedisAddr != "" {
		c := cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.ListCacheTTL,
		})

		defer func() {
			if err := c.Close(); err != nil {
				log.Error("redis close failed", "err", err)
			}
		}()

		listCache = c

		pings = append(pings, func() error {
			ctx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()

			return c.Ping(ctx)
		})
	}

	// set up routers with the wired dependencies
	router := httpx.NewRouter(httpx.RouterDeps{
		Log:            log,
		Users:          usersRepo,
		ListCache:      listCache,
		Metrics:        prom,
		Registry:       reg,
		Pings:          pings,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

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

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
