package scheduler

import (
	"time"

	"xfin/internal/domain/models"
	"xfin/pkg/util"
)

// decision is the outcome of one tick evaluation: whether to fire now and
// when the category is next due. Pure data; computing it never blocks.
type decision struct {
	fire    bool
	nextRun time.Time
}

// holidayFn reports whether a day is a trading holiday.
type holidayFn func(time.Time) bool

// decide evaluates the tick algorithm for one category at instant now (in the
// exchange time zone). lastRun is the previous completed run, nil if none.
//
// Eligibility: disabled categories, holidays and weekends never fire. Inside
// the daily window, interval categories fire when interval_minutes have
// elapsed since lastRun; once-daily categories fire at the first tick at or
// after start_time, once per calendar day.
func decide(cfg models.ScheduleConfig, lastRun *time.Time, now time.Time, isHoliday holidayFn) decision {
	start, err := util.ParseClock(cfg.StartTime)
	if err != nil {
		// Registry validation keeps this unreachable; treat as not due.
		return decision{nextRun: nextEligibleStart(now.AddDate(0, 0, 1), start, isHoliday)}
	}

	if isHoliday(now) || util.IsWeekend(now) {
		return decision{nextRun: nextEligibleStart(now.AddDate(0, 0, 1), start, isHoliday)}
	}

	if !cfg.Enabled {
		if util.MinutesOfDay(now) < start {
			return decision{nextRun: util.AtClock(now, start)}
		}
		return decision{nextRun: nextEligibleStart(now.AddDate(0, 0, 1), start, isHoliday)}
	}

	nowMin := util.MinutesOfDay(now)
	if nowMin < start {
		return decision{nextRun: util.AtClock(now, start)}
	}

	if cfg.Category.OnceDaily() {
		if lastRun != nil && util.SameDay(now, *lastRun) {
			return decision{nextRun: nextEligibleStart(now.AddDate(0, 0, 1), start, isHoliday)}
		}
		return decision{fire: true, nextRun: nextEligibleStart(now.AddDate(0, 0, 1), start, isHoliday)}
	}

	end, err := util.ParseClock(cfg.EndTime)
	if err != nil {
		return decision{nextRun: nextEligibleStart(now.AddDate(0, 0, 1), start, isHoliday)}
	}
	if nowMin > end {
		return decision{nextRun: nextEligibleStart(now.AddDate(0, 0, 1), start, isHoliday)}
	}

	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if lastRun == nil || now.Sub(*lastRun) >= interval {
		return decision{fire: true, nextRun: now.Add(interval)}
	}
	return decision{nextRun: lastRun.Add(interval)}
}

// nextEligibleStart finds the first non-weekend, non-holiday day at or after
// from and returns its start-of-window instant. Bounded scan; a calendar
// marking years of consecutive holidays just pushes next_run out.
func nextEligibleStart(from time.Time, startMinutes int, isHoliday holidayFn) time.Time {
	day := from
	for i := 0; i < 366; i++ {
		if !util.IsWeekend(day) && !isHoliday(day) {
			return util.AtClock(day, startMinutes)
		}
		day = day.AddDate(0, 0, 1)
	}
	return util.AtClock(day, startMinutes)
}
