package movers

import (
	"strconv"
	"strings"

	"xfin/internal/domain/models"
)

// Upstream sections disagree on field names for the same quantity. Each
// canonical field has an ordered candidate chain, most specific name first;
// the first non-empty hit wins.
var (
	symbolFields = []string{"symbol", "ticker", "scrip"}
	priceFields  = []string{"ltp", "lastPrice", "ltP", "price", "close"}
	changeFields = []string{"pChange", "perChange", "netPrice", "changePct", "change_pct"}
)

// resolveRecord normalizes one raw ticker into a MoverRecord. Records with a
// missing symbol, a missing/non-numeric/non-positive price, or a
// missing/non-numeric change are rejected; tolerating those gaps silently is
// the policy for heterogeneous upstream payloads.
func resolveRecord(raw models.RawTicker, section string, origin models.Origin) (models.MoverRecord, bool) {
	symbol, ok := resolveString(raw, symbolFields)
	if !ok {
		return models.MoverRecord{}, false
	}

	price, ok := resolveNumber(raw, priceFields)
	if !ok || price <= 0 {
		return models.MoverRecord{}, false
	}

	change, ok := resolveNumber(raw, changeFields)
	if !ok {
		return models.MoverRecord{}, false
	}

	return models.MoverRecord{
		Symbol:    symbol,
		Price:     price,
		ChangePct: change,
		Section:   section,
		Origin:    origin,
	}, true
}

func resolveString(raw models.RawTicker, candidates []string) (string, bool) {
	for _, name := range candidates {
		v, ok := raw[name]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// resolveNumber walks the candidate chain and coerces the first present,
// parseable value. Upstream mixes JSON numbers with formatted strings like
// "1,234.55" and "-0.42%".
func resolveNumber(raw models.RawTicker, candidates []string) (float64, bool) {
	for _, name := range candidates {
		v, ok := raw[name]
		if !ok || v == nil {
			continue
		}
		if f, ok := coerceFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

func coerceFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSuffix(s, "%")
		if s == "" || s == "-" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
