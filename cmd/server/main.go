package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"coin-price-service/internal/adapter/cache"
	httpRouter "coin-price-service/internal/adapter/http"
	"coin-price-service/internal/adapter/repository"
	"coin-price-service/internal/config"
	"coin-price-service/internal/metrics"
	"coin-price-service/internal/service"
	"coin-price-service/pkg/logger"
)

func main() {
	log := logger.NewLogger(os.Getenv("LOG_LEVEL"))
	log.Info("Starting coin price service")

	cfg, err := config.LoadConfig(log)
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	log = logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	cmc := repository.NewCoinMarketCap(
		cfg.CoinMarketCap.APIKey,
		cfg.CoinMarketCap.Timeout,
		log,
		repository.WithBaseURL(cfg.CoinMarketCap.BaseURL),
	)
	upstream := repository.NewInstrumentedSource(cmc.Name(), cmc, appMetrics, log)
	priceCache := cache.NewCachedSource(upstream, cfg.Cache.TTL, log, cache.WithMetrics(appMetrics))

	priceService := service.NewPriceService(priceCache, service.Settings{
		AllowedTickers:    cfg.Allowed.Tickers,
		AllowedCurrencies: cfg.Allowed.Currencies,
		DefaultCurrency:   cfg.DefaultCurrency,
		WarmUpConcurrency: cfg.WarmUp.Concurrency,
	}, log)

	handler := httpRouter.NewHandler(priceService, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics, httpRouter.RouterConfig{
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Gatherer:       prometheus.DefaultGatherer,
	})
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelWarmUp := context.WithCancel(context.Background())
	if cfg.WarmUp.Enabled {
		go warmUp(ctx, priceService, cfg.WarmUp.Interval, log)
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port, "base_path", cfg.Server.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelWarmUp()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// warmUp fills the cache with every allowed pair at startup and, when
// interval is positive, again on every tick.
func warmUp(ctx context.Context, prices *service.PriceService, interval time.Duration, log *logger.Logger) {
	if err := prices.WarmUp(ctx); err != nil {
		log.Error("Failed to warm up prices at startup", "error", err)
	}

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := prices.WarmUp(ctx); err != nil {
				log.Error("Failed to warm up prices", "error", err)
			}
		case <-ctx.Done():
			log.Info("Stopping price warm-up goroutine")
			return
		}
	}
}
