package repository

import (
	"context"

	"xfin/internal/domain/models"
)

// Collector performs the external collection operation for one category:
// fetch from the upstream provider, persist what was fetched. Long-running;
// callers bound it with a context deadline.
type Collector interface {
	Collect(ctx context.Context, category models.Category) error
}

// SnapshotStore holds the latest raw snapshot per (category, label). Labels
// are free-form; the gainers_losers category stores "gainers" and "losers".
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, category models.Category, label string, snap models.Snapshot) error
	GetSnapshot(ctx context.Context, category models.Category, label string) (models.Snapshot, error)
}

// RecordStorage appends flattened mover rows and serves them back paginated.
type RecordStorage interface {
	StoreBatch(ctx context.Context, rows []models.StoredMover) error
	Query(ctx context.Context, origin models.Origin, page, limit int) ([]models.StoredMover, int64, error)
	Health(ctx context.Context) error
	Close() error
}

// ConfigStore persists schedule overrides so operator edits survive restarts.
type ConfigStore interface {
	SaveSchedule(ctx context.Context, cfg models.ScheduleConfig) error
	LoadSchedules(ctx context.Context) (map[models.Category]models.ScheduleConfig, error)
}

// HolidayStore persists the holiday date set.
type HolidayStore interface {
	AddHoliday(ctx context.Context, date string) error
	RemoveHoliday(ctx context.Context, date string) error
	LoadHolidays(ctx context.Context) ([]string, error)
}

// EventPublisher emits finished collection jobs to downstream consumers.
type EventPublisher interface {
	PublishJob(ctx context.Context, job models.CollectionJob) error
	Close() error
}

// Metrics records scheduler and aggregator observability signals. Label
// values are plain strings so implementations stay free of domain imports.
type Metrics interface {
	RecordRun(category, source, outcome string)
	RecordRunDuration(category string, seconds float64)
	RecordRunning(category string, running bool)
	RecordTriggerRejected(category string)
	RecordAggregation(scope string, seconds float64)
	RecordDroppedRecords(section string, n int)
}
