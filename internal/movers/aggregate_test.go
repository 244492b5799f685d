package movers

import (
	"math"
	"reflect"
	"testing"

	"xfin/internal/domain/models"
)

func newTestAggregator() *Aggregator {
	return NewAggregator("NIFTY", "BANKNIFTY", []string{
		"HDFCBANK", "ICICIBANK", "SBIN", "KOTAKBANK", "AXISBANK", "INDUSINDBK",
		"BANKBARODA", "PNB", "AUBANK", "IDFCFIRSTB", "FEDERALBNK", "CANBK",
	}, nil)
}

func ticker(symbol string, price, change float64) models.RawTicker {
	return models.RawTicker{"symbol": symbol, "ltp": price, "pChange": change}
}

func TestAggregateAbsentSnapshot(t *testing.T) {
	agg := newTestAggregator()
	snap := models.Snapshot{"NIFTY": {ticker("RELIANCE", 2900, 1.2)}}

	if got := agg.Aggregate(nil, snap, models.ScopeAll); len(got) != 0 {
		t.Fatalf("expected empty result with nil gainers, got %d", len(got))
	}
	if got := agg.Aggregate(snap, nil, models.ScopeAll); len(got) != 0 {
		t.Fatalf("expected empty result with nil losers, got %d", len(got))
	}
}

func TestAggregateDedupeKeepsLargerMagnitude(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{
		"NIFTY": {ticker("TCS", 4100, 0.8)},
	}
	losers := models.Snapshot{
		"data": {ticker("tcs", 4095, -1.5)},
	}

	got := agg.Aggregate(gainers, losers, models.ScopeAll)
	if len(got) != 1 {
		t.Fatalf("expected 1 mover after dedupe, got %d", len(got))
	}
	if got[0].ChangePct != -1.5 {
		t.Fatalf("expected the -1.5 occurrence kept, got %+v", got[0])
	}
	if got[0].Classification != models.ClassLoser {
		t.Fatalf("expected loser, got %s", got[0].Classification)
	}
}

func TestAggregateDedupeTieKeepsFirstOccurrence(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{
		"NIFTY": {ticker("INFY", 1500, 2.0)},
	}
	losers := models.Snapshot{
		"data": {ticker("INFY", 1498, -2.0)},
	}

	got := agg.Aggregate(gainers, losers, models.ScopeAll)
	if len(got) != 1 {
		t.Fatalf("expected 1 mover, got %d", len(got))
	}
	// Equal magnitude: the gainers snapshot is walked first, so its record wins.
	if got[0].ChangePct != 2.0 {
		t.Fatalf("expected first occurrence kept on tie, got %+v", got[0])
	}
}

func TestAggregateClassificationBySign(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{
		"NIFTY": {ticker("DRIFTER", 100, -0.3)},
	}
	losers := models.Snapshot{
		"data": {ticker("CLIMBER", 200, 0.4)},
	}

	got := agg.Aggregate(gainers, losers, models.ScopeAll)
	byName := map[string]models.Classification{}
	for _, m := range got {
		byName[m.Symbol] = m.Classification
	}
	if byName["DRIFTER"] != models.ClassLoser {
		t.Fatalf("negative change from gainers feed must classify as loser")
	}
	if byName["CLIMBER"] != models.ClassGainer {
		t.Fatalf("positive change from losers feed must classify as gainer")
	}
}

func TestAggregateZeroChangeIsGainer(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{"NIFTY": {ticker("FLAT", 50, 0)}}
	losers := models.Snapshot{"data": {}}

	got := agg.Aggregate(gainers, losers, models.ScopeAll)
	if len(got) != 1 || got[0].Classification != models.ClassGainer {
		t.Fatalf("zero change must classify as gainer, got %+v", got)
	}
}

func TestAggregateScopeBroadIndex(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{
		"NIFTY":     {ticker("RELIANCE", 2900, 1.2), ticker("TCS", 4100, 0.5)},
		"BANKNIFTY": {ticker("HDFCBANK", 1650, 0.9)},
	}
	losers := models.Snapshot{
		"data": {ticker("ZEEL", 130, -3.1)},
	}

	got := agg.Aggregate(gainers, losers, models.ScopeBroadIndex)
	if len(got) != 2 {
		t.Fatalf("expected 2 broad-index movers, got %d", len(got))
	}
	for _, m := range got {
		if m.Section != "NIFTY" {
			t.Fatalf("broad-index scope leaked section %s", m.Section)
		}
	}
	if got[0].Symbol != "RELIANCE" {
		t.Fatalf("expected ranking by |change| desc, got %s first", got[0].Symbol)
	}
}

func TestAggregateScopeSectorIndexByRoster(t *testing.T) {
	agg := newTestAggregator()
	// SBIN appears outside the sector section; it is still a roster member.
	gainers := models.Snapshot{
		"BANKNIFTY": {ticker("HDFCBANK", 1650, 0.9), ticker("ICICIBANK", 1100, 1.4)},
		"NIFTY":     {ticker("SBIN", 780, 2.2), ticker("RELIANCE", 2900, 1.2)},
	}
	losers := models.Snapshot{
		"data": {ticker("PNB", 98, -1.1), ticker("ZEEL", 130, -3.1)},
	}

	got := agg.Aggregate(gainers, losers, models.ScopeSectorIndex)
	if len(got) != 4 {
		t.Fatalf("expected 4 roster members, got %d: %+v", len(got), got)
	}
	wantOrder := []string{"SBIN", "ICICIBANK", "HDFCBANK", "PNB"}
	var gotOrder []string
	for _, m := range got {
		gotOrder = append(gotOrder, m.Symbol)
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Fatalf("expected gainers-first ranking %v, got %v", wantOrder, gotOrder)
	}
}

func TestAggregateScopeOther(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{
		"NIFTY":     {ticker("RELIANCE", 2900, 1.2)},
		"BANKNIFTY": {ticker("HDFCBANK", 1650, 0.9)},
		"FO_SEC1":   {ticker("DELTACORP", 140, 4.8)},
	}
	losers := models.Snapshot{
		"data": {ticker("ZEEL", 130, -3.1)},
	}

	got := agg.Aggregate(gainers, losers, models.ScopeOther)
	for _, m := range got {
		if m.Section == "NIFTY" || m.Section == "BANKNIFTY" {
			t.Fatalf("other scope leaked index section %s", m.Section)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 other movers, got %d", len(got))
	}
	if got[0].Symbol != "DELTACORP" {
		t.Fatalf("expected DELTACORP ranked first, got %s", got[0].Symbol)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{
		"NIFTY":     {ticker("A", 10, 1.0), ticker("B", 20, 1.0)},
		"BANKNIFTY": {ticker("HDFCBANK", 1650, 0.9)},
		"FO_SEC2":   {ticker("C", 30, -1.0)},
	}
	losers := models.Snapshot{
		"data": {ticker("D", 40, -1.0), ticker("A", 11, -1.0)},
	}

	first := agg.Aggregate(gainers, losers, models.ScopeAll)
	for i := 0; i < 20; i++ {
		if got := agg.Aggregate(gainers, losers, models.ScopeAll); !reflect.DeepEqual(got, first) {
			t.Fatalf("aggregation not deterministic on run %d:\nfirst %+v\ngot   %+v", i, first, got)
		}
	}
}

func TestAggregateDropsUnresolvable(t *testing.T) {
	agg := newTestAggregator()
	gainers := models.Snapshot{
		"NIFTY": {
			ticker("GOOD", 100, 1.0),
			{"ltp": 50.0, "pChange": 1.0},                        // no symbol
			{"symbol": "NOPRICE", "pChange": 1.0},                // no price
			{"symbol": "NEGPRICE", "ltp": -5.0, "pChange": 1.0},  // invalid price
			{"symbol": "NOCHANGE", "ltp": 75.0},                  // no change
			{"symbol": "BADNUM", "ltp": "n/a", "pChange": "bad"}, // unparseable
		},
	}
	losers := models.Snapshot{"data": {}}

	got := agg.Aggregate(gainers, losers, models.ScopeAll)
	if len(got) != 1 || got[0].Symbol != "GOOD" {
		t.Fatalf("expected only the resolvable record, got %+v", got)
	}
}

func TestResolveNumberCoercions(t *testing.T) {
	cases := []struct {
		name string
		raw  models.RawTicker
		want float64
		ok   bool
	}{
		{"json number", models.RawTicker{"pChange": 1.25}, 1.25, true},
		{"int", models.RawTicker{"pChange": 3}, 3, true},
		{"plain string", models.RawTicker{"pChange": "2.4"}, 2.4, true},
		{"comma string", models.RawTicker{"ltp": "1,234.55"}, 0, false}, // wrong chain
		{"percent suffix", models.RawTicker{"pChange": "-0.42%"}, -0.42, true},
		{"dash placeholder", models.RawTicker{"pChange": "-"}, 0, false},
		{"nil value", models.RawTicker{"pChange": nil}, 0, false},
		{"fallback name", models.RawTicker{"perChange": "0.8"}, 0.8, true},
	}

	for _, tc := range cases {
		got, ok := resolveNumber(tc.raw, changeFields)
		if ok != tc.ok {
			t.Fatalf("%s: ok=%v, want %v", tc.name, ok, tc.ok)
		}
		if ok && math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolveNumberPriceWithCommas(t *testing.T) {
	raw := models.RawTicker{"ltp": "1,234.55"}
	got, ok := resolveNumber(raw, priceFields)
	if !ok || math.Abs(got-1234.55) > 1e-9 {
		t.Fatalf("expected 1234.55, got %v ok=%v", got, ok)
	}
}
