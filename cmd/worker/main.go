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

	"github.com/geocoder89/vidtrack/internal/config"
	"github.com/geocoder89/vidtrack/internal/db"
	"github.com/geocoder89/vidtrack/internal/notifications"
	"github.com/geocoder89/vidtrack/internal/observability"
	mongorepo "github.com/geocoder89/vidtrack/internal/repo/mongo"
	"github.com/geocoder89/vidtrack/internal/sweep"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

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
	notifier := notifications.NewLogNotifier(log)

	sweeper := sweep.New(sweep.Config{
		Interval: cfg.SweepInterval,
	}, usersRepo, notifier, prom, log)

	// liveness + metrics for the worker process
	mux := http.NewServeMux()
	mux.Handle("/", sweep.HealthHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := healthSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("worker has started", "sweep_interval", cfg.SweepInterval.String())

	if err := sweeper.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("worker health server shutdown failed", "err", err)
	}

	log.Info("worker shutdown complete")
}
