package movers

import (
	"sort"
	"time"

	"xfin/internal/domain/models"
)

// Flatten resolves every ticker in a snapshot into storable rows, stamped
// with the collection time. Unresolvable entries are skipped, mirroring the
// aggregation tolerance policy. Section order is deterministic.
func Flatten(snap models.Snapshot, category models.Category, origin models.Origin, at time.Time) []models.StoredMover {
	sections := make([]string, 0, len(snap))
	for name := range snap {
		sections = append(sections, name)
	}
	sort.Strings(sections)

	var out []models.StoredMover
	for _, section := range sections {
		for _, raw := range snap[section] {
			rec, ok := resolveRecord(raw, section, origin)
			if !ok {
				continue
			}
			out = append(out, models.StoredMover{
				Timestamp: at,
				Category:  category,
				Origin:    origin,
				Section:   rec.Section,
				Symbol:    rec.Symbol,
				Price:     rec.Price,
				ChangePct: rec.ChangePct,
			})
		}
	}
	return out
}
