// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"customer-service-workers/internal/analysis"
	"customer-service-workers/internal/common/aws"
	"customer-service-workers/internal/common/camunda"
	"customer-service-workers/internal/common/config"
	"customer-service-workers/internal/common/database"
	"customer-service-workers/internal/common/logger"
	"customer-service-workers/internal/common/observability"
	"customer-service-workers/internal/common/retry"

	// Pipeline stage workers (3)
	ai "customer-service-workers/internal/workers/customer-service/analyze-issue"
	ccd "customer-service-workers/internal/workers/customer-service/collect-customer-data"
	gr "customer-service-workers/internal/workers/customer-service/generate-response"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load("")
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retry.WithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retry.WithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retry.WithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, log, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retry.WithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS Clients ---
	s3Store, err := aws.NewS3Client(ctx, cfg.Storage.AWS.Region, cfg.Storage.AWS.Bucket)
	if err != nil {
		zapLog.Fatal("s3 client initialization failed", zap.Error(err))
	}

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client initialization failed", zap.Error(err))
	}

	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client initialization failed", zap.Error(err))
	}

	zapLog.Info("All external service clients initialized")

	engine := analysis.NewEngine(cfg.Heuristics)

	var workers []*camunda.CamundaWorker

	// --- Pipeline Stage Workers (3) ---
	if cfg.Workers[ccd.TaskType].Enabled {
		wcfg := cfg.Workers[ccd.TaskType]
		handler := ccd.NewHandler(
			&ccd.Config{
				ProfileCacheTTL: time.Duration(cfg.Storage.ProfileTTL) * time.Second,
				HistoryLimit:    int32(cfg.Storage.MaxHistory),
				Timeout:         config.GetDuration(wcfg.Timeout),
			},
			pg.DB, redis.Client, s3Store, log,
		)
		workers = append(workers, camunda.NewWorker(zeebeClient.GetClient(), ccd.TaskType, wcfg, handler, zapLog))
	}

	if cfg.Workers[ai.TaskType].Enabled {
		wcfg := cfg.Workers[ai.TaskType]
		acfg := ai.LoadConfig()
		acfg.Timeout = config.GetDuration(wcfg.Timeout)
		handler := ai.NewHandler(acfg, engine, redis.Client, log)
		workers = append(workers, camunda.NewWorker(zeebeClient.GetClient(), ai.TaskType, wcfg, handler, zapLog))
	}

	if cfg.Workers[gr.TaskType].Enabled {
		wcfg := cfg.Workers[gr.TaskType]
		gcfg := gr.LoadConfig()
		gcfg.EmailEnabled = cfg.Notifications.Email.Enabled
		gcfg.FromEmail = cfg.Notifications.Email.FromEmail
		gcfg.TechTeamEmail = cfg.Notifications.Email.TechTeamEmail
		gcfg.ManagementEnabled = cfg.Notifications.Management.Enabled
		gcfg.ManagementTopicARN = cfg.Notifications.Management.TopicARN
		gcfg.ReportIndex = cfg.Database.Elasticsearch.ReportIndex
		gcfg.Timeout = config.GetDuration(wcfg.Timeout)
		handler := gr.NewHandler(gcfg, pg.DB, s3Store, esClient, sesClient, snsClient, log)
		workers = append(workers, camunda.NewWorker(zeebeClient.GetClient(), gr.TaskType, wcfg, handler, zapLog))
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
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

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
