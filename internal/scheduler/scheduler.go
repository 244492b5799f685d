package scheduler

import (
	"context"
	"sync"
	"time"

	"xfin/internal/domain/models"
	"xfin/internal/domain/repository"
	"xfin/internal/registry"
	"xfin/pkg/config"
	"xfin/pkg/logger"
)

// Scheduler owns one Runner per category and is the trigger gateway for
// manual runs. Loops share nothing but the registry, the calendar and their
// own status entry.
type Scheduler struct {
	runners  map[models.Category]*Runner
	statuses *StatusStore
	log      *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

// New builds runners for every category.
func New(
	cfg *config.Config,
	reg *registry.Registry,
	cal holidaySource,
	statuses *StatusStore,
	collector repository.Collector,
	publisher repository.EventPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *Scheduler {
	opts := RunnerOptions{
		Registry:   reg,
		Calendar:   cal,
		Statuses:   statuses,
		Collector:  collector,
		Publisher:  publisher,
		Metrics:    metrics,
		Clock:      systemClock{loc: cfg.Location()},
		Log:        log,
		TickEvery:  cfg.Scheduler.TickInterval,
		JobTimeout: cfg.Scheduler.JobTimeout,
	}

	runners := make(map[models.Category]*Runner, len(models.Categories()))
	for _, cat := range models.Categories() {
		runners[cat] = NewRunner(cat, opts)
	}

	return &Scheduler{
		runners:  runners,
		statuses: statuses,
		log:      log,
	}
}

// Start launches every category loop. Idempotent.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for cat, r := range s.runners {
		s.wg.Add(1)
		go func(cat models.Category, r *Runner) {
			defer s.wg.Done()
			r.Start(ctx)
		}(cat, r)
	}
	s.log.Info("scheduler started", logger.Int("categories", len(s.runners)))
}

// Stop cancels all loops and waits for in-flight ticks to return. A running
// collection job is cut short by its context.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.started = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger is the manual "run now" gateway. It runs synchronously: the call
// returns after the job finishes, or immediately with accepted=false when a
// run is already in flight for the category.
func (s *Scheduler) Trigger(ctx context.Context, cat models.Category) (accepted bool, ok bool) {
	r, found := s.runners[cat]
	if !found {
		return false, false
	}
	return r.TriggerNow(ctx), true
}

// Status returns one category's run status.
func (s *Scheduler) Status(cat models.Category) (models.RunStatus, bool) {
	return s.statuses.Get(cat)
}

// StatusAll returns every category's run status.
func (s *Scheduler) StatusAll() map[models.Category]models.RunStatus {
	return s.statuses.All()
}

// Statuses exposes the underlying store for subscribers (websocket feed).
func (s *Scheduler) Statuses() *StatusStore {
	return s.statuses
}

// NewSystemClock returns a Clock in the given location.
func NewSystemClock(loc *time.Location) Clock {
	return systemClock{loc: loc}
}
