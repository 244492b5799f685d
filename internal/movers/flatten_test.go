package movers

import (
	"testing"
	"time"

	"xfin/internal/domain/models"
)

func TestFlatten(t *testing.T) {
	at := time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)
	snap := models.Snapshot{
		"NIFTY": {
			ticker("RELIANCE", 2900, 1.2),
			{"ltp": 50.0, "pChange": 1.0}, // unresolvable, skipped
		},
		"BANKNIFTY": {
			ticker("HDFCBANK", 1650, 0.9),
		},
	}

	rows := Flatten(snap, models.CategoryGainersLosers, models.OriginGainers, at)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Sections walk in sorted order.
	if rows[0].Symbol != "HDFCBANK" || rows[1].Symbol != "RELIANCE" {
		t.Fatalf("unexpected order: %s, %s", rows[0].Symbol, rows[1].Symbol)
	}
	for _, row := range rows {
		if !row.Timestamp.Equal(at) {
			t.Fatalf("row not stamped with collection time: %+v", row)
		}
		if row.Origin != models.OriginGainers || row.Category != models.CategoryGainersLosers {
			t.Fatalf("row provenance wrong: %+v", row)
		}
	}
}

func TestFlattenEmptySnapshot(t *testing.T) {
	rows := Flatten(models.Snapshot{}, models.CategoryGainersLosers, models.OriginLosers, time.Now())
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
