package models

import "time"

// RawTicker is one upstream ticker payload as decoded JSON. Field names vary
// by upstream section; resolution happens in the movers normalization layer.
type RawTicker map[string]interface{}

// Snapshot is one point-in-time collection of raw tickers partitioned by
// section name (broad index, sector index, all-securities bucket, ...).
type Snapshot map[string][]RawTicker

// Origin labels which snapshot a record was read from. Classification does
// not trust it; it only breaks dedup ties deterministically.
type Origin string

const (
	OriginGainers Origin = "gainers"
	OriginLosers  Origin = "losers"
)

// Classification of a mover, derived from the sign of its change percent.
type Classification string

const (
	ClassGainer Classification = "gainer"
	ClassLoser  Classification = "loser"
)

// MoverRecord is one ticker observation after field resolution.
type MoverRecord struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Section   string  `json:"section"`
	Origin    Origin  `json:"origin"`
}

// ClassifiedMover is the aggregation output unit. Produced fresh on every
// request; never persisted.
type ClassifiedMover struct {
	Symbol         string         `json:"symbol"`
	Price          float64        `json:"price"`
	ChangePct      float64        `json:"change_pct"`
	Classification Classification `json:"classification"`
	Section        string         `json:"section"`
}

// Scope is the requested filter view over aggregated movers.
type Scope string

const (
	ScopeAll         Scope = "all"
	ScopeBroadIndex  Scope = "broad-index"
	ScopeSectorIndex Scope = "sector-index"
	ScopeOther       Scope = "other"
)

// ParseScope validates a scope string, defaulting empty to ScopeAll.
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopeAll, "":
		return ScopeAll, true
	case ScopeBroadIndex:
		return ScopeBroadIndex, true
	case ScopeSectorIndex:
		return ScopeSectorIndex, true
	case ScopeOther:
		return ScopeOther, true
	}
	return "", false
}

// StoredMover is one flattened row persisted to ClickHouse by the collector,
// served back through the paginated data endpoints.
type StoredMover struct {
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Origin    Origin    `json:"origin"`
	Section   string    `json:"section"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
}
