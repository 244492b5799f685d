package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-01-27")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.January || got.Day() != 27 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "27-01-2025", "2025/01/27", "2025-13-01", "today"} {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 9*60+15 {
		t.Fatalf("unexpected minutes %d", got)
	}
	if _, err := ParseClock("9:15pm"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAtClock(t *testing.T) {
	day := time.Date(2025, 1, 27, 13, 45, 12, 0, time.UTC)
	got := AtClock(day, 9*60+15)
	want := time.Date(2025, 1, 27, 9, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2025, 1, 25, 10, 0, 0, 0, time.UTC)
	mon := time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)
	if !IsWeekend(sat) {
		t.Fatalf("expected saturday to be weekend")
	}
	if IsWeekend(mon) {
		t.Fatalf("expected monday to be a weekday")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 1, 27, 0, 1, 0, 0, time.UTC)
	b := time.Date(2025, 1, 27, 23, 59, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatalf("expected same day")
	}
	if SameDay(a, b.AddDate(0, 0, 1)) {
		t.Fatalf("expected different day")
	}
}
