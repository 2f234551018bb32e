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

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/PioneData/CAT-Backend/internal/config"
	"github.com/PioneData/CAT-Backend/internal/db"
	"github.com/PioneData/CAT-Backend/internal/middleware"
	"github.com/PioneData/CAT-Backend/internal/monitoring"
	"github.com/PioneData/CAT-Backend/internal/monitoring/weathergov"
	"github.com/PioneData/CAT-Backend/internal/observability"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db.Connect()
	common.Init()
	monitoring.Init()

	metrics := observability.NewMetrics()

	ingestor := monitoring.NewIngestor(db.DB, logger, metrics)
	if cfg.SamplePolicyholders {
		ingestor.OnZipcodeAttributed = monitoring.SamplePolicyholderHook(nil)
		logger.Warn("sample policyholder generation enabled")
	}

	feed := weathergov.NewClient(cfg.FeedURL, cfg.FeedTimeout, cfg.FeedRate)
	job := monitoring.NewFetchJob(feed, ingestor, cfg.FetchInterval, logger, metrics)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/common", common.SetupRoutes())
	r.Mount("/monitoring", monitoring.SetupRoutes(&monitoring.Handlers{
		Fetcher:  feed,
		Ingestor: ingestor,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go job.Run(ctx)

	server := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
