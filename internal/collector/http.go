package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"xfin/internal/domain/models"
	"xfin/internal/domain/repository"
	"xfin/internal/movers"
	xhttp "xfin/pkg/http"
	"xfin/pkg/logger"
)

// Labels under which the gainers_losers category stores its two snapshots.
const (
	LabelGainers = "gainers"
	LabelLosers  = "losers"
	LabelLatest  = "latest"
)

// HTTPCollector implements repository.Collector against the configured
// upstream JSON endpoints. It fetches, normalizes the payload into a
// section-partitioned snapshot, and persists it; provider-specific parsing
// stays out of it.
type HTTPCollector struct {
	client    *xhttp.Client
	headers   map[string]string
	endpoints map[string]string
	snapshots repository.SnapshotStore
	records   repository.RecordStorage
	log       *logger.Logger
}

// New creates an HTTP-backed collector. records may be nil when ClickHouse
// is disabled; snapshots is required.
func New(
	client *xhttp.Client,
	headers map[string]string,
	endpoints map[string]string,
	snapshots repository.SnapshotStore,
	records repository.RecordStorage,
	log *logger.Logger,
) *HTTPCollector {
	return &HTTPCollector{
		client:    client,
		headers:   headers,
		endpoints: endpoints,
		snapshots: snapshots,
		records:   records,
		log:       log,
	}
}

// Collect fetches and persists one category's data. The gainers_losers
// category has two upstream variants, stored as separately labeled
// snapshots; everything else is a single fetch.
func (c *HTTPCollector) Collect(ctx context.Context, category models.Category) error {
	if category == models.CategoryGainersLosers {
		if err := c.collectOne(ctx, category, LabelGainers, models.OriginGainers); err != nil {
			return err
		}
		return c.collectOne(ctx, category, LabelLosers, models.OriginLosers)
	}
	return c.collectOne(ctx, category, LabelLatest, "")
}

func (c *HTTPCollector) collectOne(ctx context.Context, category models.Category, label string, origin models.Origin) error {
	key := category.String()
	if category == models.CategoryGainersLosers {
		key = label
	}
	url, ok := c.endpoints[key]
	if !ok || url == "" {
		return fmt.Errorf("no upstream endpoint configured for %s", key)
	}

	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		URL:     url,
		Headers: c.headers,
	}, &body)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", key, err)
	}

	snap, err := decodeSnapshot(body)
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}

	if err := c.snapshots.PutSnapshot(ctx, category, label, snap); err != nil {
		return fmt.Errorf("store snapshot %s/%s: %w", category, label, err)
	}

	if c.records != nil && origin != "" {
		rows := movers.Flatten(snap, category, origin, time.Now().UTC())
		if len(rows) > 0 {
			if err := c.records.StoreBatch(ctx, rows); err != nil {
				// History is secondary to the live snapshot; keep the run
				// successful and surface the gap in logs.
				c.log.Warn("mover history append failed",
					logger.String("category", category.String()),
					logger.Int("rows", len(rows)),
					logger.Error(err),
				)
			}
		}
	}

	c.log.Debug("snapshot collected",
		logger.String("category", category.String()),
		logger.String("label", label),
		logger.Int("sections", len(snap)),
	)
	return nil
}

// decodeSnapshot coerces an upstream JSON body into a section-partitioned
// snapshot. Three shapes occur in the wild: an object of section -> ticker
// list, an object with nested {data: [...]} sections, and a bare top-level
// array (stored under a single "data" section).
func decodeSnapshot(body []byte) (models.Snapshot, error) {
	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(body, &asObject); err == nil {
		snap := make(models.Snapshot, len(asObject))
		for section, raw := range asObject {
			if list, ok := decodeTickerList(raw); ok {
				snap[section] = list
			}
		}
		return snap, nil
	}

	if list, ok := decodeTickerList(body); ok {
		return models.Snapshot{"data": list}, nil
	}

	return nil, fmt.Errorf("unrecognized payload shape")
}

func decodeTickerList(raw json.RawMessage) ([]models.RawTicker, bool) {
	var list []models.RawTicker
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}

	// Section wrapped as {"data": [...]}.
	var wrapped struct {
		Data []models.RawTicker `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, true
	}

	return nil, false
}
