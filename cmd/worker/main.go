package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/bootstrap"
	"github.com/kirillkom/outlet-assistant/internal/config"
	"github.com/kirillkom/outlet-assistant/internal/observability/logging"
	"github.com/kirillkom/outlet-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		WithQueue:        true,
		Observer:         workerMetrics,
		QueueLagObserver: workerMetrics.ObserveEventLag,
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", workerMetrics.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_failed", "error", err)
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeOutletChanged(ctx, func(handlerCtx context.Context, outletID int64) error {
		indexCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		start := time.Now()
		workerMetrics.StartIndex()
		err := app.Indexer.SyncByID(indexCtx, outletID)
		workerMetrics.FinishIndex(time.Since(start), err)
		if err == nil {
			slog.Info("outlet_reindexed", "outlet_id", outletID, "duration_ms", time.Since(start).Milliseconds())
		}
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
