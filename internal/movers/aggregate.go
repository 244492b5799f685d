package movers

import (
	"math"
	"sort"
	"strings"

	"xfin/internal/domain/models"
	"xfin/internal/domain/repository"
)

// Aggregator merges the gainers and losers snapshots into one deduplicated,
// classified, ranked view. It is stateless apart from its configuration:
// the two index section names and the closed sector roster.
type Aggregator struct {
	broadSection  string
	sectorSection string
	roster        map[string]struct{}
	metrics       repository.Metrics
}

// NewAggregator creates an aggregator. Roster symbols are matched
// case-insensitively; metrics may be nil.
func NewAggregator(broadSection, sectorSection string, roster []string, metrics repository.Metrics) *Aggregator {
	rs := make(map[string]struct{}, len(roster))
	for _, s := range roster {
		rs[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return &Aggregator{
		broadSection:  broadSection,
		sectorSection: sectorSection,
		roster:        rs,
		metrics:       metrics,
	}
}

// Aggregate combines two labeled snapshots and applies the requested scope.
// It performs no I/O and recomputes from scratch on every call; given the
// same inputs it returns the same ordered list.
//
// An absent snapshot yields an empty result: half a picture would misrank
// everything, so the caller gets nothing until both sides exist.
func (a *Aggregator) Aggregate(gainers, losers models.Snapshot, scope models.Scope) []models.ClassifiedMover {
	if gainers == nil || losers == nil {
		return []models.ClassifiedMover{}
	}

	records := a.normalize(gainers, models.OriginGainers)
	records = append(records, a.normalize(losers, models.OriginLosers)...)

	deduped := dedupe(records)
	return a.applyScope(deduped, scope)
}

// normalize flattens one snapshot into resolved records. Sections iterate in
// sorted name order so the whole pipeline is deterministic regardless of map
// ordering.
func (a *Aggregator) normalize(snap models.Snapshot, origin models.Origin) []models.MoverRecord {
	sections := make([]string, 0, len(snap))
	for name := range snap {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	var out []models.MoverRecord
	for _, section := range sections {
		dropped := 0
		for _, raw := range snap[section] {
			rec, ok := resolveRecord(raw, section, origin)
			if !ok {
				dropped++
				continue
			}
			out = append(out, rec)
		}
		if a.metrics != nil {
			a.metrics.RecordDroppedRecords(section, dropped)
		}
	}
	return out
}

// dedupe keeps one record per symbol (case-insensitive) across all sections
// and both origins: the occurrence with the larger absolute change percent.
// Equal magnitudes keep the earlier occurrence in the deterministic input
// order (gainers snapshot first, sections alphabetical).
func dedupe(records []models.MoverRecord) []models.ClassifiedMover {
	index := make(map[string]int, len(records))
	var kept []models.MoverRecord

	for _, rec := range records {
		key := strings.ToUpper(rec.Symbol)
		i, seen := index[key]
		if !seen {
			index[key] = len(kept)
			kept = append(kept, rec)
			continue
		}
		if math.Abs(rec.ChangePct) > math.Abs(kept[i].ChangePct) {
			kept[i] = rec
		}
	}

	out := make([]models.ClassifiedMover, 0, len(kept))
	for _, rec := range kept {
		out = append(out, classify(rec))
	}
	return out
}

// classify derives gainer/loser from the sign of the kept change, not from
// which snapshot the record was read from. A symbol sourced from the losers
// feed with a non-negative change is a gainer.
func classify(rec models.MoverRecord) models.ClassifiedMover {
	class := models.ClassLoser
	if rec.ChangePct >= 0 {
		class = models.ClassGainer
	}
	return models.ClassifiedMover{
		Symbol:         rec.Symbol,
		Price:          rec.Price,
		ChangePct:      rec.ChangePct,
		Classification: class,
		Section:        rec.Section,
	}
}

func (a *Aggregator) applyScope(all []models.ClassifiedMover, scope models.Scope) []models.ClassifiedMover {
	switch scope {
	case models.ScopeBroadIndex:
		out := filter(all, func(m models.ClassifiedMover) bool {
			return m.Section == a.broadSection
		})
		sortByAbsChange(out)
		return out

	case models.ScopeSectorIndex:
		// Membership is checked against the explicit roster, not the source
		// section: the scope returns exactly its known constituents when
		// present, and nothing else.
		out := filter(all, func(m models.ClassifiedMover) bool {
			_, ok := a.roster[strings.ToUpper(m.Symbol)]
			return ok
		})
		sort.SliceStable(out, func(i, j int) bool {
			gi := out[i].Classification == models.ClassGainer
			gj := out[j].Classification == models.ClassGainer
			if gi != gj {
				return gi
			}
			ai, aj := math.Abs(out[i].ChangePct), math.Abs(out[j].ChangePct)
			if ai != aj {
				return ai > aj
			}
			return out[i].Symbol < out[j].Symbol
		})
		return out

	case models.ScopeOther:
		out := filter(all, func(m models.ClassifiedMover) bool {
			return m.Section != a.broadSection && m.Section != a.sectorSection
		})
		sortByAbsChange(out)
		return out

	default:
		out := append([]models.ClassifiedMover(nil), all...)
		sortByAbsChange(out)
		return out
	}
}

func filter(in []models.ClassifiedMover, keep func(models.ClassifiedMover) bool) []models.ClassifiedMover {
	out := make([]models.ClassifiedMover, 0, len(in))
	for _, m := range in {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func sortByAbsChange(ms []models.ClassifiedMover) {
	sort.SliceStable(ms, func(i, j int) bool {
		ai, aj := math.Abs(ms[i].ChangePct), math.Abs(ms[j].ChangePct)
		if ai != aj {
			return ai > aj
		}
		return ms[i].Symbol < ms[j].Symbol
	})
}
