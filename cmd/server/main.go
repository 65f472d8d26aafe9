package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"ekyc-gateway/internal/audit"
	auditmetrics "ekyc-gateway/internal/audit/metrics"
	"ekyc-gateway/internal/audit/outbox"
	jwttoken "ekyc-gateway/internal/jwt_token"
	"ekyc-gateway/internal/platform/config"
	"ekyc-gateway/internal/platform/database"
	"ekyc-gateway/internal/platform/httpserver"
	"ekyc-gateway/internal/platform/kafka/producer"
	"ekyc-gateway/internal/platform/logger"
	"ekyc-gateway/internal/platform/metrics"
	"ekyc-gateway/internal/platform/redis"
	"ekyc-gateway/internal/provider"
	"ekyc-gateway/internal/verification/handler"
	verifmetrics "ekyc-gateway/internal/verification/metrics"
	"ekyc-gateway/internal/verification/service"
	"ekyc-gateway/internal/verification/store"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing ekyc-gateway", "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	faceID, err := provider.NewClient(cfg.Provider, log)
	if err != nil {
		log.Error("provider init failed", "error", err)
		os.Exit(1)
	}

	outboxStore := outbox.NewPostgres(pool.DB())
	recorder := audit.NewOutboxRecorder(outboxStore)

	var outboxWorker *outbox.Worker
	if cfg.Kafka.Brokers != "" {
		prod, err := producer.New(cfg.Kafka, log)
		if err != nil {
			log.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer prod.Close()

		outboxWorker = outbox.NewWorker(outboxStore, prod, cfg.Kafka.Topic, log,
			outbox.WithMetrics(auditmetrics.New()))
	} else {
		log.Warn("kafka not configured, audit events stay in the outbox table")
	}

	svcOpts := []service.Option{
		service.WithMetrics(verifmetrics.New()),
		service.WithTokenTTL(cfg.Provider.TokenTTL),
	}
	if redisClient != nil {
		svcOpts = append(svcOpts, service.WithTokenCache(service.NewRedisTokenCache(redisClient)))
	}
	verificationService := service.New(faceID, store.NewPostgres(pool.DB()), recorder, log, svcOpts...)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "ekyc-gateway")
	httpMetrics := metrics.New()

	router := chi.NewRouter()
	router.Get("/health", healthHandler(pool, redisClient))
	router.Handle("/metrics", promhttp.Handler())
	handler.New(verificationService, log, httpMetrics, jwtService).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	if outboxWorker != nil {
		outboxWorker.Start()
		defer outboxWorker.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// healthHandler reports dependency health. Redis is optional and omitted
// when not configured.
func healthHandler(pool *database.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{"database": "ok"}

		if err := pool.Health(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(checks)
	}
}
