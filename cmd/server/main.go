package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"xe-rate-service/internal/adapter/cache"
	httpRouter "xe-rate-service/internal/adapter/http"
	"xe-rate-service/internal/adapter/repository"
	"xe-rate-service/internal/config"
	"xe-rate-service/internal/metrics"
	"xe-rate-service/internal/service"
	"xe-rate-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Log.Level)
	log.Info("Starting XE rate service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(registry)

	rateCache := cache.NewMemoryCache(log.With("component", "cache"))
	ttlPolicy := cache.NewTTLPolicy(cfg.Cache.TTL)

	xeClient := repository.NewXEClient(
		cfg.XEAPI.BaseURL,
		cfg.XEAPI.AccountID,
		cfg.XEAPI.APIKey,
		cfg.XEAPI.Timeout,
		log.With("component", "xe_client"),
	)

	exchangeService := service.NewExchangeService(xeClient, rateCache, ttlPolicy, appMetrics, log)
	if ttl, ok := ttlPolicy.TTL(); ok {
		log.Info("Rate expiration configured", "ttl", ttl.String())
	} else {
		log.Info("Rate expiration disabled")
	}

	handler := httpRouter.NewHandler(exchangeService, log)
	router := httpRouter.NewRouter(handler, log, appMetrics, registry)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelSweep := context.WithCancel(context.Background())
	go sweepExpiredRates(ctx, exchangeService, cfg.Cache.ExpireInterval, log)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// sweepExpiredRates drops stale rates even when no lookups arrive. Lookups
// expire the cache on their own, so this only bounds memory held by idle rates.
func sweepExpiredRates(ctx context.Context, service *service.ExchangeService, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		log.Info("Background rate expiration disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if service.ExpireRates(ctx) {
				log.Debug("Background sweep expired rates")
			}
		case <-ctx.Done():
			log.Info("Stopping rate expiration goroutine")
			return
		}
	}
}
