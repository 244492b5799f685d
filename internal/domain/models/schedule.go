package models

import "time"

// RunOutcome is the recorded result of the most recent collection attempt.
type RunOutcome string

const (
	OutcomeUnknown RunOutcome = "unknown"
	OutcomeSuccess RunOutcome = "success"
	OutcomeFailed  RunOutcome = "failed"
)

// TriggerSource distinguishes scheduled ticks from manual triggers.
type TriggerSource string

const (
	TriggerScheduled TriggerSource = "scheduled"
	TriggerManual    TriggerSource = "manual"
)

// ScheduleConfig is the per-category collection schedule. Times are
// times-of-day ("15:04") in the exchange time zone. IntervalMinutes and
// EndTime are ignored for once-daily categories.
type ScheduleConfig struct {
	Category        Category `json:"category" yaml:"category"`
	IntervalMinutes int      `json:"interval_minutes" yaml:"interval_minutes"`
	StartTime       string   `json:"start_time" yaml:"start_time"`
	EndTime         string   `json:"end_time" yaml:"end_time"`
	Enabled         bool     `json:"enabled" yaml:"enabled"`
}

// SchedulePatch is a partial schedule update; nil fields are left unchanged.
type SchedulePatch struct {
	IntervalMinutes *int    `json:"interval_minutes,omitempty"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
	Enabled         *bool   `json:"enabled,omitempty"`
}

// RunStatus is the externally visible execution state of one category.
type RunStatus struct {
	Running    bool       `json:"running"`
	NextRun    *time.Time `json:"next_run"`
	LastRun    *time.Time `json:"last_run"`
	LastStatus RunOutcome `json:"last_status"`
	LastError  string     `json:"last_error,omitempty"`
}

// CollectionJob describes one execution attempt. It exists only for the
// duration of a run; its outcome is folded into RunStatus on completion.
type CollectionJob struct {
	Category   Category      `json:"category"`
	Source     TriggerSource `json:"trigger_source"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Outcome    RunOutcome    `json:"outcome"`
	Error      string        `json:"error,omitempty"`
}

// Duration returns the wall time the job took.
func (j CollectionJob) Duration() time.Duration {
	return j.FinishedAt.Sub(j.StartedAt)
}
