// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsutil "printmatch-workers/internal/common/aws"
	"printmatch-workers/internal/common/camunda"
	"printmatch-workers/internal/common/config"
	"printmatch-workers/internal/common/database"
	"printmatch-workers/internal/common/logger"
	"printmatch-workers/internal/common/observability"
	"printmatch-workers/internal/common/validation"
	"printmatch-workers/internal/repository"
	"printmatch-workers/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(observability.Options{
		ServiceName:     cfg.Observability.ServiceName,
		ServiceVersion:  cfg.App.Version,
		Environment:     cfg.App.Environment,
		TracingEnabled:  cfg.Observability.TracingEnabled,
		TraceSampleRate: cfg.Observability.TraceSampleRate,
	}, log)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Zeebe (the client retries the topology request itself) ---
	zeebe, err := camunda.NewClient(cfg.Camunda)
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch, cfg.Matching.ProducerIndex)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry unavailable, job variables will not be validated",
			zap.String("path", cfg.Registry.Path), zap.Error(err))
		reg = nil
	}
	validator, err := validation.NewSchemaValidator(reg)
	if err != nil {
		zapLog.Fatal("invalid activity registry", zap.Error(err))
	}
	zapLog.Info("Input schemas loaded", zap.Strings("taskTypes", validator.TaskTypes()))

	deps := dependencies{
		store:     repository.NewStore(pg.DB),
		directory: repository.NewProducerDirectory(esClient.Client, cfg.Matching.ProducerIndex, cfg.Matching.CandidateSearchSize, log),
		cache:     repository.NewCache(redisClient.Client, log),
	}

	// --- AWS (only when a notification channel is on) ---
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsutil.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to load AWS config", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			deps.ses = awsutil.NewSESClient(awsCfg)
		}
		if cfg.Notifications.SMS.Enabled {
			deps.sns = awsutil.NewSNSClient(awsCfg)
		}
	}

	// --- Workers ---
	var started []*camunda.Worker
	for _, w := range buildWorkers(cfg, deps, log) {
		if !config.IsWorkerEnabled(cfg, w.taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", w.taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, w.taskType)
		started = append(started, camunda.StartWorker(zeebe.GetClient(), w.taskType, w.handler, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       jobTimeout(reg, w.taskType, config.GetDuration(wcfg.Timeout)),
			Validator:     validator,
			Observability: obs,
		}, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(started)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks, ready := database.CheckAll(r.Context(), 3*time.Second, pg, redisClient, esClient, zeebe)
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range started {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped")
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
