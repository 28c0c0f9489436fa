package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cvlift/cvlift/config"
	"github.com/cvlift/cvlift/internal/api"
	"github.com/cvlift/cvlift/internal/billing"
	"github.com/cvlift/cvlift/internal/content"
	"github.com/cvlift/cvlift/internal/logger"
	"github.com/cvlift/cvlift/internal/metrics"
	middlewares "github.com/cvlift/cvlift/internal/middleware"
	"github.com/cvlift/cvlift/internal/ratelimit"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting cvlift application",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	if err := cfg.Billing.Validate(); err != nil {
		logger.Fatal("Billing configuration incomplete", "error", err)
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	// Rate limiter for checkout session creation: Redis when configured,
	// in-process token buckets otherwise
	var limiter middlewares.Limiter
	if cfg.Redis.URL != "" {
		mgr, err := ratelimit.NewManager(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer mgr.Close()
		limiter = mgr
		logger.Info("Redis rate limiting enabled")
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}

	// Payment provider and deliverable resolution
	provider := billing.NewStripeService(cfg.Billing)
	resolver := content.NewFileResolver(cfg.Content.FilePath)
	if err := resolver.Health(context.Background()); err != nil {
		logger.Warn("Deliverable not readable at startup", "error", err, "path", cfg.Content.FilePath)
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)

	// Initialize API handlers
	apiHandler := api.NewHandler(provider, resolver, cfg.Content.DownloadName, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r, middlewares.RateLimit(limiter, cfg.RateLimit.CheckoutRPM))

	// Landing page and browser glue
	r.Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
