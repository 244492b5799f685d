package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"xfin/internal/domain/models"
	"xfin/internal/domain/repository"
	"xfin/internal/registry"
	"xfin/pkg/logger"
)

// Clock abstracts time for the runner so window logic is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }

// Runner drives one category's collection loop. Every tick it re-reads the
// schedule and the holiday calendar, decides whether to fire, and keeps
// next_run current. The guard makes a scheduled fire and a manual trigger
// mutually exclusive; whichever loses gives up instead of waiting.
type Runner struct {
	category  models.Category
	registry  *registry.Registry
	cal       holidaySource
	statuses  *StatusStore
	collector repository.Collector
	publisher repository.EventPublisher
	metrics   repository.Metrics
	clock     Clock
	log       *logger.Logger

	tickEvery  time.Duration
	jobTimeout time.Duration

	// guard is the category's concurrency guard: at most one collection job
	// in flight, shared between the tick path and manual triggers.
	guard sync.Mutex
}

// holidaySource is the calendar surface the runner needs.
type holidaySource interface {
	IsHoliday(t time.Time) bool
}

// RunnerOptions carries the shared collaborators for all runners.
type RunnerOptions struct {
	Registry   *registry.Registry
	Calendar   holidaySource
	Statuses   *StatusStore
	Collector  repository.Collector
	Publisher  repository.EventPublisher
	Metrics    repository.Metrics
	Clock      Clock
	Log        *logger.Logger
	TickEvery  time.Duration
	JobTimeout time.Duration
}

// NewRunner creates the loop for one category.
func NewRunner(cat models.Category, opts RunnerOptions) *Runner {
	return &Runner{
		category:   cat,
		registry:   opts.Registry,
		cal:        opts.Calendar,
		statuses:   opts.Statuses,
		collector:  opts.Collector,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		clock:      opts.Clock,
		log:        opts.Log.With("category", cat.String()),
		tickEvery:  opts.TickEvery,
		jobTimeout: opts.JobTimeout,
	}
}

// Start runs the tick loop until ctx is canceled. One goroutine per category;
// a running collection job blocks only its own loop.
func (r *Runner) Start(ctx context.Context) {
	r.tick(ctx)

	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick performs one scheduling decision. The decision itself is synchronous
// and cheap; only a fire does real work.
func (r *Runner) tick(ctx context.Context) {
	cfg := r.registry.Get(r.category)
	now := r.clock.Now()

	var lastRun *time.Time
	if st, ok := r.statuses.Get(r.category); ok {
		lastRun = st.LastRun
	}

	d := decide(cfg, lastRun, now, r.cal.IsHoliday)
	r.statuses.SetNextRun(r.category, d.nextRun)

	if !d.fire {
		return
	}

	if !r.guard.TryLock() {
		// A run is already in flight; never queue a second one.
		return
	}
	defer r.guard.Unlock()

	job := r.execute(ctx, models.TriggerScheduled)

	// Recompute next_run with the fresh last_run.
	after := decide(cfg, &job.FinishedAt, r.clock.Now(), r.cal.IsHoliday)
	r.statuses.SetNextRun(r.category, after.nextRun)
}

// TriggerNow is the manual trigger path. It shares the tick path's guard:
// if a run is in flight the trigger is rejected, not queued. Returns whether
// the run was accepted.
func (r *Runner) TriggerNow(ctx context.Context) bool {
	if !r.guard.TryLock() {
		r.metrics.RecordTriggerRejected(r.category.String())
		return false
	}
	defer r.guard.Unlock()

	job := r.execute(ctx, models.TriggerManual)

	// A manual run counts like a scheduled one: recompute next_run from the
	// fresh last_run instead of leaving it stale until the next tick.
	cfg := r.registry.Get(r.category)
	after := decide(cfg, &job.FinishedAt, r.clock.Now(), r.cal.IsHoliday)
	r.statuses.SetNextRun(r.category, after.nextRun)
	return true
}

// execute runs one collection job under the held guard and folds the outcome
// into RunStatus. Collection errors and panics become a failed outcome; they
// never escape the job boundary.
func (r *Runner) execute(ctx context.Context, source models.TriggerSource) models.CollectionJob {
	job := models.CollectionJob{
		Category:  r.category,
		Source:    source,
		StartedAt: r.clock.Now(),
	}

	r.statuses.SetRunning(r.category, true)
	r.metrics.RecordRunning(r.category.String(), true)
	r.log.Info("collection started", logger.String("source", string(source)))

	err := r.collect(ctx)

	job.FinishedAt = r.clock.Now()
	if err != nil {
		job.Outcome = models.OutcomeFailed
		job.Error = err.Error()
		r.log.Error("collection failed",
			logger.String("source", string(source)),
			logger.Duration("took", job.Duration()),
			logger.Error(err),
		)
	} else {
		job.Outcome = models.OutcomeSuccess
		r.log.Info("collection finished",
			logger.String("source", string(source)),
			logger.Duration("took", job.Duration()),
		)
	}

	r.statuses.Complete(r.category, job)
	r.metrics.RecordRunning(r.category.String(), false)
	r.metrics.RecordRun(r.category.String(), string(source), string(job.Outcome))
	r.metrics.RecordRunDuration(r.category.String(), job.Duration().Seconds())

	if r.publisher != nil {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if perr := r.publisher.PublishJob(pctx, job); perr != nil {
			r.log.Warn("job event publish failed", logger.Error(perr))
		}
		cancel()
	}

	return job
}

func (r *Runner) collect(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("collection panic: %v", p)
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()

	return r.collector.Collect(cctx, r.category)
}
