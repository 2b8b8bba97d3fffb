package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wakesup1/fintrack/internal/cache"
	"github.com/wakesup1/fintrack/internal/config"
	"github.com/wakesup1/fintrack/internal/db"
	httpx "github.com/wakesup1/fintrack/internal/http"
	"github.com/wakesup1/fintrack/internal/observability"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// a missing secret would silently sign tokens with an empty key
	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	// tracing is opt-in via OTEL_EXPORTER_OTLP_ENDPOINT
	var shutdownTracer func(context.Context) error

	if cfg.OTLPEndpoint != "" {
		var err error
		shutdownTracer, err = observability.InitTracer(context.Background(), "fintrack", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
	}

	pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)

	if err != nil {
		log.Error("db connection failed", "err", err)
		os.Exit(1)
	}

	migrateCtx, cancelMigrate := config.WithTimeout(10 * time.Second)
	err = db.Migrate(migrateCtx, pool)
	cancelMigrate()

	if err != nil {
		log.Error("db migration failed", "err", err)
		os.Exit(1)
	}

	// metrics
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// response cache: redis when configured, in-process otherwise
	var store cache.Store
	var redisStore *cache.Redis

	if cfg.RedisAddr != "" {
		redisStore = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.CacheTTL)
		store = redisStore
	} else {
		store = cache.New(cfg.CacheTTL)
	}

	router := httpx.NewRouter(log, pool, cfg, prom, reg, store)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
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

		pool.Close()

		if redisStore != nil {
			_ = redisStore.Close()
		}

		if shutdownTracer != nil {
			_ = shutdownTracer(ctx)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
