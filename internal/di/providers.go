package di

import (
	"context"
	"fmt"
	"time"

	"wellpulse/internal/domain/repository"
	"wellpulse/internal/handler/api"
	internalrepo "wellpulse/internal/repository"
	"wellpulse/internal/scheduler"
	"wellpulse/internal/usecase"
	"wellpulse/pkg/cache"
	pkgch "wellpulse/pkg/clickhouse"
	"wellpulse/pkg/config"
	pkgkafka "wellpulse/pkg/kafka"
	applogger "wellpulse/pkg/logger"
	"wellpulse/pkg/metrics"
	"wellpulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append(
		[]string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database)},
		internalrepo.Schema()...,
	)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close() // best-effort close
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCache creates the Redis cache service, or nil when disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvidePublisher creates the Kafka result publisher, or nil when disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLogStore creates the ClickHouse daily-log store.
func ProvideLogStore(chClient *pkgch.Client, l *applogger.Logger) repository.LogStore {
	store := internalrepo.NewCHLogStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvidePredictionStore creates the ClickHouse prediction/status store.
func ProvidePredictionStore(chClient *pkgch.Client, l *applogger.Logger) repository.PredictionStore {
	store := internalrepo.NewCHPredictionStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvidePipelineRunner creates the per-user pipeline use case.
func ProvidePipelineRunner(
	logs repository.LogStore,
	store repository.PredictionStore,
	cacheSvc cache.Service,
	pub repository.Publisher,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.PipelineRunner {
	return usecase.NewPipelineRunner(logs, store, cacheSvc, pub, m, cfg, l)
}

// ProvideBatchRunner creates the batch orchestrator.
func ProvideBatchRunner(
	pipeline *usecase.PipelineRunner,
	logs repository.LogStore,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.BatchRunner {
	return usecase.NewBatchRunner(pipeline, logs, m, cfg, l)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	batch *usecase.BatchRunner,
	store repository.PredictionStore,
	cacheSvc cache.Service,
	cfg *config.Config,
) *api.PipelineEchoHandler {
	return api.NewPipelineEchoHandler(l, batch, store, cacheSvc, cfg)
}

// ProvideScheduler creates the cron scheduler, or nil when disabled.
func ProvideScheduler(batch *usecase.BatchRunner, cfg *config.Config, l *applogger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	s, err := scheduler.New(batch, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return s, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.PipelineEchoHandler,
	sched *scheduler.Scheduler,
	pub repository.Publisher,
	chClient *pkgch.Client,
) *server.App {
	// Keep a disabled scheduler as a nil interface, not a typed nil.
	var lifecycle server.Lifecycle
	if sched != nil {
		lifecycle = sched
	}
	return server.New(cfg, l, handler, lifecycle, pub, chClient)
}
