package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"xfin/internal/domain/repository"
	"xfin/pkg/logger"
	"xfin/pkg/util"
)

// ValidationError describes a rejected holiday date.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("calendar: %s", e.Reason)
}

// Calendar is the mutable set of market holiday dates. Membership checks are
// O(1) and may run concurrently from every category loop; mutations serialize
// on the calendar as a whole.
type Calendar struct {
	mu    sync.RWMutex
	dates map[string]struct{}
	store repository.HolidayStore
	log   *logger.Logger
}

// New creates a calendar, loading any persisted dates.
func New(ctx context.Context, store repository.HolidayStore, log *logger.Logger) (*Calendar, error) {
	c := &Calendar{
		dates: make(map[string]struct{}),
		store: store,
		log:   log,
	}

	if store != nil {
		saved, err := store.LoadHolidays(ctx)
		if err != nil {
			log.Warn("could not load persisted holidays", logger.Error(err))
		} else {
			for _, d := range saved {
				if _, err := util.ParseDate(d); err != nil {
					continue
				}
				c.dates[d] = struct{}{}
			}
		}
	}

	return c, nil
}

// Add inserts a holiday date. Idempotent; rejects dates not in YYYY-MM-DD
// form.
func (c *Calendar) Add(ctx context.Context, date string) error {
	if _, err := util.ParseDate(date); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	c.mu.Lock()
	_, exists := c.dates[date]
	c.dates[date] = struct{}{}
	c.mu.Unlock()

	if !exists && c.store != nil {
		if err := c.store.AddHoliday(ctx, date); err != nil {
			c.log.Warn("holiday persist failed", logger.String("date", date), logger.Error(err))
		}
	}
	return nil
}

// Remove deletes a holiday date. Removing an absent or malformed date is not
// an error.
func (c *Calendar) Remove(ctx context.Context, date string) error {
	c.mu.Lock()
	_, exists := c.dates[date]
	delete(c.dates, date)
	c.mu.Unlock()

	if exists && c.store != nil {
		if err := c.store.RemoveHoliday(ctx, date); err != nil {
			c.log.Warn("holiday remove persist failed", logger.String("date", date), logger.Error(err))
		}
	}
	return nil
}

// IsHoliday reports whether t's calendar date is a holiday.
func (c *Calendar) IsHoliday(t time.Time) bool {
	key := util.DateKey(t)
	c.mu.RLock()
	_, ok := c.dates[key]
	c.mu.RUnlock()
	return ok
}

// List returns all holiday dates sorted ascending.
func (c *Calendar) List() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.dates))
	for d := range c.dates {
		out = append(out, d)
	}
	c.mu.RUnlock()

	sort.Strings(out)
	return out
}
