package di

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/repository"
	"StockCast/internal/forecast"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/sentiment"
	"StockCast/internal/service/finnhub"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	"StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/queue"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache connects to redis when any backend needs it;
// otherwise it returns nil and everything stays in process memory.
func ProvideRedisCache(cfg *config.Config) (cache.Service, error) {
	if cfg.JobStore.Type != "redis" && cfg.Queue.Type != "redis" {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideJobStore picks the configured job store backend.
func ProvideJobStore(cfg *config.Config, rc cache.Service) (repository.JobStore, error) {
	if cfg.JobStore.Type == "redis" {
		if rc == nil {
			return nil, fmt.Errorf("job store: redis backend requires a redis connection")
		}
		return internalrepo.NewRedisJobStore(rc, cfg.JobStore.TTL), nil
	}
	return internalrepo.NewMemoryJobStore(), nil
}

// ProvideQueue picks the configured queue backend.
func ProvideQueue(cfg *config.Config, rc cache.Service, log *logger.Logger) (queue.Queue, error) {
	qcfg := &queue.Config{
		Workers:   cfg.Queue.Workers,
		QueueSize: cfg.Queue.QueueSize,
		PollDelay: cfg.Queue.PollDelay,
	}
	if cfg.Queue.Type == "redis" {
		redisCache, ok := rc.(*cache.RedisCache)
		if !ok {
			return nil, fmt.Errorf("queue: redis backend requires a redis connection")
		}
		return queue.NewRedisQueue(log, qcfg, redisCache.Client(),
			queue.WithKeyPrefix(cfg.Queue.KeyPrefix)), nil
	}
	return queue.NewMemoryQueue(log, qcfg), nil
}

// ProvideCandleArchive creates the ClickHouse candle archive, or nil
// when the archive is disabled.
func ProvideCandleArchive(cfg *config.Config, log *logger.Logger) (repository.CandleArchive, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	archive, err := internalrepo.NewClickHouseHistory(ctx, client, log)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return archive, nil
}

// ProvideEventPublisher creates the kafka lifecycle event publisher,
// or a no-op when kafka is disabled.
func ProvideEventPublisher(cfg *config.Config, log *logger.Logger) (repository.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopEventPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic, log), nil
}

// ProvideFinnhubClient creates the market data client used for both
// daily closes and company news, throttled under the provider quota.
func ProvideFinnhubClient(cfg *config.Config, log *logger.Logger) *finnhub.Client {
	return finnhub.NewClient(cfg.Finnhub.APIKey, log,
		finnhub.WithBaseURL(cfg.Finnhub.BaseURL),
		finnhub.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Finnhub.Timeout))),
		finnhub.WithRateLimiter(ratelimit.New()),
	)
}

// ProvideEngine creates the forecast pipeline engine.
func ProvideEngine(cfg *config.Config, log *logger.Logger) *forecast.Engine {
	return forecast.NewEngine(cfg.Forecast, log)
}

// ProvideAggregator creates the news sentiment aggregator.
func ProvideAggregator(cfg *config.Config, fh *finnhub.Client, log *logger.Logger) *sentiment.Aggregator {
	return sentiment.NewAggregator(fh, cfg.Forecast.HeadlineLimit, log)
}

// ProvideOrchestrator assembles the job lifecycle orchestrator and
// registers its queue job.
func ProvideOrchestrator(
	cfg *config.Config,
	store repository.JobStore,
	fh *finnhub.Client,
	archive repository.CandleArchive,
	events repository.EventPublisher,
	m repository.Metrics,
	q queue.Queue,
	engine *forecast.Engine,
	agg *sentiment.Aggregator,
	log *logger.Logger,
) *usecase.Orchestrator {
	var opts []usecase.Option
	if archive != nil {
		opts = append(opts, usecase.WithCandleArchive(archive))
	}
	orch := usecase.NewOrchestrator(store, fh, events, m, q, engine, agg, cfg.Forecast, log, opts...)
	q.RegisterJob(usecase.NewForecastJob(orch))
	return orch
}

// ProvideHTTPHandler creates the echo API handler.
func ProvideHTTPHandler(orch *usecase.Orchestrator, log *logger.Logger) xhttp.Handler {
	return api.NewForecastHandler(orch, log)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	q queue.Queue,
	handler xhttp.Handler,
	events repository.EventPublisher,
	rc cache.Service,
	archive repository.CandleArchive,
	_ *usecase.Orchestrator, // forces orchestrator construction and job registration
) *server.App {
	return server.New(cfg, log, q, handler, events, rc, archive)
}
