// API server entry point for medassist.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careloop/medassist/internal/application/assistant"
	"github.com/careloop/medassist/internal/config"
	"github.com/careloop/medassist/internal/infrastructure/database/postgres"
	"github.com/careloop/medassist/internal/infrastructure/database/postgres/repositories"
	"github.com/careloop/medassist/internal/infrastructure/database/redis"
	"github.com/careloop/medassist/internal/infrastructure/messaging/kafka"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/logging"
	"github.com/careloop/medassist/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/careloop/medassist/internal/interfaces/http"
	"github.com/careloop/medassist/internal/interfaces/http/handlers"
	"github.com/careloop/medassist/internal/interfaces/http/middleware"
	"github.com/careloop/medassist/internal/nlu"
)

const defaultConfigPath = "configs/config.yaml"

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	skipMigrations := flag.Bool("skip-migrations", false, "do not run schema migrations on startup")
	flag.Parse()

	if err := run(*configPath, *skipMigrations); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, skipMigrations bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{cfg.Log.Output},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.SetDefault(logger)

	logger.Info("starting medassist API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	if !skipMigrations {
		if err := postgres.RunMigrations(cfg.Database.DSN(), "file://"+cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	medRepo := repositories.NewMedicationRepository(pool, logger)
	doseLog := repositories.NewDoseLogRepository(pool, logger)

	// Redis conversation store
	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()
	conversations := redis.NewConversationStore(rdb, cfg.Redis.KeyPrefix,
		cfg.Assistant.ConversationTurns, cfg.Assistant.ConversationTTL)

	// Kafka alert producer
	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	// Engine, metrics, application service
	engine := nlu.NewEngine(nlu.DefaultTables())
	metrics := prometheus.NewMetrics()
	svc := assistant.NewService(engine, medRepo, doseLog, conversations, producer,
		assistant.Config{
			MaxUtteranceLength: cfg.Assistant.MaxUtteranceLength,
			DefaultSnooze:      time.Duration(cfg.Assistant.DefaultSnoozeMinute) * time.Minute,
			PublishConflicts:   cfg.Assistant.PublishConflicts,
		}, logger, metrics)

	// HTTP server
	limiter := middleware.NewTokenBucketLimiter(20, 40, 5*time.Minute)
	defer limiter.Close()

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Assistant:  handlers.NewAssistantHandler(svc, conversations, logger),
		Medication: handlers.NewMedicationHandler(medRepo, doseLog, metrics),
		Health: handlers.NewHealthHandler(version,
			handlers.CheckFunc{CheckName: "postgres", Fn: pool.Ping},
			handlers.CheckFunc{CheckName: "redis", Fn: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}},
		),
		Metrics:    metrics,
		Logger:     logger,
		Limiter:    limiter,
		Config:     cfg.Server,
		MetricsCfg: cfg.Metrics,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := server.Stop(context.Background()); err != nil {
		logger.Error("shutdown failed", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// loadConfig reads the config file, falling back to environment variables
// and defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: config file %s not found, using environment and defaults\n", path)
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
