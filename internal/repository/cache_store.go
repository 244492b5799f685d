package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"xfin/internal/domain/models"
	"xfin/pkg/cache"
)

const (
	scheduleKeyPrefix = "schedule:"
	holidayKeyPrefix  = "holiday:"
	snapshotKeyPrefix = "snapshot:"
)

// CacheStore persists schedules, holidays and latest snapshots through a
// cache.Service (Redis in production, in-memory otherwise). It implements
// ConfigStore, HolidayStore and SnapshotStore.
type CacheStore struct {
	c cache.Service
}

// NewCacheStore wraps a cache service.
func NewCacheStore(c cache.Service) *CacheStore {
	return &CacheStore{c: c}
}

func (s *CacheStore) SaveSchedule(ctx context.Context, cfg models.ScheduleConfig) error {
	return s.c.Set(ctx, scheduleKeyPrefix+cfg.Category.String(), cfg, 0)
}

func (s *CacheStore) LoadSchedules(ctx context.Context) (map[models.Category]models.ScheduleConfig, error) {
	out := make(map[models.Category]models.ScheduleConfig)
	for _, cat := range models.Categories() {
		var cfg models.ScheduleConfig
		err := s.c.Get(ctx, scheduleKeyPrefix+cat.String(), &cfg)
		if errors.Is(err, cache.ErrCacheMiss) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load schedule %s: %w", cat, err)
		}
		out[cat] = cfg
	}
	return out, nil
}

func (s *CacheStore) AddHoliday(ctx context.Context, date string) error {
	return s.c.Set(ctx, holidayKeyPrefix+date, "1", 0)
}

func (s *CacheStore) RemoveHoliday(ctx context.Context, date string) error {
	return s.c.Delete(ctx, holidayKeyPrefix+date)
}

func (s *CacheStore) LoadHolidays(ctx context.Context) ([]string, error) {
	keys, err := s.c.Keys(ctx, holidayKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, holidayKeyPrefix))
	}
	return out, nil
}

func (s *CacheStore) PutSnapshot(ctx context.Context, category models.Category, label string, snap models.Snapshot) error {
	return s.c.Set(ctx, snapshotKey(category, label), snap, 0)
}

func (s *CacheStore) GetSnapshot(ctx context.Context, category models.Category, label string) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.c.Get(ctx, snapshotKey(category, label), &snap)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s/%s: %w", category, label, err)
	}
	return snap, nil
}

func snapshotKey(category models.Category, label string) string {
	return snapshotKeyPrefix + category.String() + ":" + label
}
