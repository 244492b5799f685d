package repository

import (
	"context"

	"xfin/internal/domain/models"
)

// NoopRecords discards writes and serves empty pages. Used when ClickHouse
// is disabled so callers never need a nil check.
type NoopRecords struct{}

func (NoopRecords) StoreBatch(context.Context, []models.StoredMover) error {
	return nil
}

func (NoopRecords) Query(context.Context, models.Origin, int, int) ([]models.StoredMover, int64, error) {
	return []models.StoredMover{}, 0, nil
}

func (NoopRecords) Health(context.Context) error { return nil }

func (NoopRecords) Close() error { return nil }
