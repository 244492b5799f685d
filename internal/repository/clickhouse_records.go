package repository

import (
	"context"
	"fmt"

	"xfin/internal/domain/models"
	"xfin/pkg/clickhouse"
)

// MoverRecordsSchema creates the mover_records table. Run once at startup
// through Client.InitSchema.
var MoverRecordsSchema = []string{
	`CREATE DATABASE IF NOT EXISTS xfin`,
	`CREATE TABLE IF NOT EXISTS xfin.mover_records (
		timestamp  DateTime64(3) CODEC(Delta, ZSTD),
		category   LowCardinality(String),
		origin     LowCardinality(String),
		section    LowCardinality(String),
		symbol     String,
		price      Float64,
		change_pct Float64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(timestamp)
	ORDER BY (origin, timestamp, symbol)
	TTL toDateTime(timestamp) + INTERVAL 90 DAY`,
}

// ClickHouseRecords stores flattened mover rows in ClickHouse and serves
// them back in reverse chronological order.
type ClickHouseRecords struct {
	client *clickhouse.Client
}

func NewClickHouseRecords(client *clickhouse.Client) *ClickHouseRecords {
	return &ClickHouseRecords{client: client}
}

func (r *ClickHouseRecords) StoreBatch(ctx context.Context, rows []models.StoredMover) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO xfin.mover_records (timestamp, category, origin, section, symbol, price, change_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			row.Timestamp, string(row.Category), string(row.Origin),
			row.Section, row.Symbol, row.Price, row.ChangePct,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append row %s: %w", row.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (r *ClickHouseRecords) Query(ctx context.Context, origin models.Origin, page, limit int) ([]models.StoredMover, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int64
	err := r.client.DB().QueryRowContext(ctx,
		`SELECT count() FROM xfin.mover_records WHERE origin = ?`, string(origin),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	rows, err := r.client.DB().QueryContext(ctx,
		`SELECT timestamp, category, origin, section, symbol, price, change_pct
		 FROM xfin.mover_records
		 WHERE origin = ?
		 ORDER BY timestamp DESC, symbol ASC
		 LIMIT ? OFFSET ?`,
		string(origin), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]models.StoredMover, 0, limit)
	for rows.Next() {
		var (
			m        models.StoredMover
			category string
			orig     string
		)
		if err := rows.Scan(&m.Timestamp, &category, &orig, &m.Section, &m.Symbol, &m.Price, &m.ChangePct); err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		m.Category = models.Category(category)
		m.Origin = models.Origin(orig)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate records: %w", err)
	}
	return out, total, nil
}

func (r *ClickHouseRecords) Health(ctx context.Context) error {
	return r.client.Health(ctx)
}

func (r *ClickHouseRecords) Close() error {
	return r.client.Close()
}
