package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"xfin/internal/domain/models"
	"xfin/internal/domain/repository"
	"xfin/pkg/config"
	"xfin/pkg/logger"
	"xfin/pkg/util"
)

// ErrUnknownCategory is returned for updates that name no known category.
var ErrUnknownCategory = errors.New("registry: unknown category")

// ValidationError describes a rejected schedule update. The update is never
// applied partially.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("registry: %s: %s", e.Field, e.Reason)
}

type entry struct {
	mu  sync.RWMutex
	cfg models.ScheduleConfig
}

// Registry holds one schedule configuration per category. Reads are lock-free
// per entry; updates to one category serialize on that category's entry and
// never block other categories.
type Registry struct {
	entries map[models.Category]*entry
	store   repository.ConfigStore
	log     *logger.Logger
}

// New creates a registry seeded from configuration defaults, then overlays
// any persisted operator overrides. Missing categories get safe defaults.
func New(ctx context.Context, cfg *config.Config, store repository.ConfigStore, log *logger.Logger) (*Registry, error) {
	r := &Registry{
		entries: make(map[models.Category]*entry, len(models.Categories())),
		store:   store,
		log:     log,
	}

	for _, cat := range models.Categories() {
		sc := defaultSchedule(cat)
		if d, ok := cfg.Scheduler.Defaults[cat.String()]; ok {
			sc = models.ScheduleConfig{
				Category:        cat,
				IntervalMinutes: d.IntervalMinutes,
				StartTime:       d.StartTime,
				EndTime:         d.EndTime,
				Enabled:         d.Enabled,
			}
		}
		if err := validateSchedule(sc); err != nil {
			return nil, fmt.Errorf("default schedule for %s: %w", cat, err)
		}
		r.entries[cat] = &entry{cfg: sc}
	}

	if store != nil {
		saved, err := store.LoadSchedules(ctx)
		if err != nil {
			log.Warn("could not load persisted schedules, using defaults", logger.Error(err))
		} else {
			for cat, sc := range saved {
				e, ok := r.entries[cat]
				if !ok {
					continue
				}
				if err := validateSchedule(sc); err != nil {
					log.Warn("discarding invalid persisted schedule",
						logger.String("category", cat.String()), logger.Error(err))
					continue
				}
				e.cfg = sc
			}
		}
	}

	return r, nil
}

// Get returns the current schedule for a category. Never fails for known
// categories; unknown ones fall back to defaults to keep callers total.
func (r *Registry) Get(cat models.Category) models.ScheduleConfig {
	e, ok := r.entries[cat]
	if !ok {
		return defaultSchedule(cat)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// All returns every category's schedule keyed by category name.
func (r *Registry) All() map[models.Category]models.ScheduleConfig {
	out := make(map[models.Category]models.ScheduleConfig, len(r.entries))
	for cat, e := range r.entries {
		e.mu.RLock()
		out[cat] = e.cfg
		e.mu.RUnlock()
	}
	return out
}

// Update applies a partial update to one category's schedule. The patch is
// validated against the merged result; on failure nothing changes. Concurrent
// updates to the same category serialize; last write wins. The new schedule
// takes effect on the runner's next tick.
func (r *Registry) Update(ctx context.Context, cat models.Category, patch models.SchedulePatch) (models.ScheduleConfig, error) {
	e, ok := r.entries[cat]
	if !ok {
		return models.ScheduleConfig{}, ErrUnknownCategory
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.cfg
	if patch.IntervalMinutes != nil {
		next.IntervalMinutes = *patch.IntervalMinutes
	}
	if patch.StartTime != nil {
		next.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		next.EndTime = *patch.EndTime
	}
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}

	if err := validateSchedule(next); err != nil {
		return models.ScheduleConfig{}, err
	}

	e.cfg = next

	if r.store != nil {
		if err := r.store.SaveSchedule(ctx, next); err != nil {
			// The in-memory schedule is authoritative; persistence is
			// best-effort and retried on the next update.
			r.log.Warn("schedule persist failed",
				logger.String("category", cat.String()), logger.Error(err))
		}
	}

	r.log.Info("schedule updated",
		logger.String("category", cat.String()),
		logger.Int("interval_minutes", next.IntervalMinutes),
		logger.String("start_time", next.StartTime),
		logger.String("end_time", next.EndTime),
		logger.Bool("enabled", next.Enabled),
	)

	return next, nil
}

func validateSchedule(sc models.ScheduleConfig) error {
	if !sc.Category.OnceDaily() && sc.IntervalMinutes <= 0 {
		return &ValidationError{Field: "interval_minutes", Reason: "must be positive"}
	}

	start, err := util.ParseClock(sc.StartTime)
	if err != nil {
		return &ValidationError{Field: "start_time", Reason: err.Error()}
	}

	if sc.Category.OnceDaily() {
		return nil
	}

	end, err := util.ParseClock(sc.EndTime)
	if err != nil {
		return &ValidationError{Field: "end_time", Reason: err.Error()}
	}
	if start > end {
		return &ValidationError{Field: "start_time", Reason: "must not be after end_time"}
	}
	return nil
}

func defaultSchedule(cat models.Category) models.ScheduleConfig {
	if cat.OnceDaily() {
		// FII/DII flows publish after market close; one shot in the evening.
		return models.ScheduleConfig{
			Category:  cat,
			StartTime: "18:30",
			Enabled:   true,
		}
	}
	return models.ScheduleConfig{
		Category:        cat,
		IntervalMinutes: 5,
		StartTime:       "09:15",
		EndTime:         "15:30",
		Enabled:         true,
	}
}
