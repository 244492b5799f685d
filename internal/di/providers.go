package di

import (
	"context"
	"fmt"
	"time"

	"xfin/internal/calendar"
	"xfin/internal/collector"
	"xfin/internal/domain/repository"
	"xfin/internal/handler/api"
	"xfin/internal/movers"
	"xfin/internal/registry"
	internalrepo "xfin/internal/repository"
	"xfin/internal/scheduler"
	"xfin/pkg/cache"
	pkgch "xfin/pkg/clickhouse"
	"xfin/pkg/config"
	xhttp "xfin/pkg/http"
	pkgkafka "xfin/pkg/kafka"
	"xfin/pkg/logger"
	"xfin/pkg/metrics"
	"xfin/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache returns Redis-backed storage when enabled, otherwise an
// in-process fallback.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, using in-memory cache")
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithAddress(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithPassword(cfg.Redis.Password),
		cache.WithDB(cfg.Redis.DB),
		cache.WithPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// schema. Returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
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
	if err := client.InitSchema(ctx, internalrepo.MoverRecordsSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideRecordStorage creates ClickHouse-backed record storage, or a no-op
// store when ClickHouse is disabled.
func ProvideRecordStorage(chClient *pkgch.Client) repository.RecordStorage {
	if chClient == nil {
		return internalrepo.NoopRecords{}
	}
	return internalrepo.NewClickHouseRecords(chClient)
}

// ProvideEventPublisher creates a Kafka-backed job event publisher. Returns
// nil when Kafka is disabled; the scheduler skips publishing then.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideCacheStore wraps the cache service as the persistence layer for
// schedules, holidays and snapshots.
func ProvideCacheStore(c cache.Service) *internalrepo.CacheStore {
	return internalrepo.NewCacheStore(c)
}

// ProvideRegistry seeds the schedule registry from config and persisted
// overrides.
func ProvideRegistry(cfg *config.Config, store *internalrepo.CacheStore, log *logger.Logger) (*registry.Registry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return registry.New(ctx, cfg, store, log)
}

// ProvideCalendar loads the persisted holiday set.
func ProvideCalendar(store *internalrepo.CacheStore, log *logger.Logger) (*calendar.Calendar, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return calendar.New(ctx, store, log)
}

// ProvideStatusStore creates the run-status store.
func ProvideStatusStore() *scheduler.StatusStore {
	return scheduler.NewStatusStore()
}

// ProvideCollector creates the upstream HTTP collector.
func ProvideCollector(
	cfg *config.Config,
	store *internalrepo.CacheStore,
	records repository.RecordStorage,
	log *logger.Logger,
) repository.Collector {
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Upstream.Timeout))
	return collector.New(client, cfg.Upstream.Headers, cfg.Upstream.Endpoints, store, records, log)
}

// ProvideScheduler builds one runner per category.
func ProvideScheduler(
	cfg *config.Config,
	reg *registry.Registry,
	cal *calendar.Calendar,
	statuses *scheduler.StatusStore,
	coll repository.Collector,
	publisher repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *scheduler.Scheduler {
	return scheduler.New(cfg, reg, cal, statuses, coll, publisher, m, log)
}

// ProvideAggregator configures the movers aggregation from config sections.
func ProvideAggregator(cfg *config.Config, m repository.Metrics) *movers.Aggregator {
	return movers.NewAggregator(
		cfg.Movers.BroadIndexSection,
		cfg.Movers.SectorIndexSection,
		cfg.Movers.SectorRoster,
		m,
	)
}

// ProvideHandler composes the HTTP handler groups.
func ProvideHandler(
	reg *registry.Registry,
	cal *calendar.Calendar,
	sched *scheduler.Scheduler,
	agg *movers.Aggregator,
	store *internalrepo.CacheStore,
	records repository.RecordStorage,
	statuses *scheduler.StatusStore,
	m repository.Metrics,
	log *logger.Logger,
) xhttp.Handler {
	return api.New(
		api.NewSchedulerHandler(reg, cal, sched, log),
		api.NewMoversHandler(agg, store, records, m, log),
		api.NewStatusHandler(statuses, log),
		api.NewHealthHandler(records),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	sched *scheduler.Scheduler,
	handler xhttp.Handler,
	cacheSvc cache.Service,
	chClient *pkgch.Client,
	publisher repository.EventPublisher,
) *server.App {
	return server.New(cfg, log, sched, handler, cacheSvc, chClient, publisher)
}
