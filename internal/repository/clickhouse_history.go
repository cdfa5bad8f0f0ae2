package repository

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/pkg/clickhouse"
	"StockCast/pkg/logger"
)

// candleSchema is applied on startup, idempotent.
var candleSchema = []string{
	`CREATE TABLE IF NOT EXISTS daily_closes (
		ticker LowCardinality(String),
		date   Date,
		close  Float64
	)
	ENGINE = ReplacingMergeTree
	ORDER BY (ticker, date)`,
}

// ClickHouseHistory archives fetched daily closes so repeated requests
// for the same ticker and range skip the upstream provider.
type ClickHouseHistory struct {
	client *clickhouse.Client
	log    *logger.Logger
}

func NewClickHouseHistory(ctx context.Context, client *clickhouse.Client, log *logger.Logger) (*ClickHouseHistory, error) {
	if err := client.InitSchema(ctx, candleSchema); err != nil {
		return nil, fmt.Errorf("candle schema: %w", err)
	}
	return &ClickHouseHistory{client: client, log: log}, nil
}

// Close releases the underlying connection pool.
func (h *ClickHouseHistory) Close() error {
	return h.client.Close()
}

// Store inserts the series in one batched transaction. The replacing
// merge tree deduplicates overlapping (ticker, date) rows.
func (h *ClickHouseHistory) Store(ctx context.Context, ticker string, series models.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}

	tx, err := h.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive %s: begin: %w", ticker, err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO daily_closes (ticker, date, close) VALUES (?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("archive %s: prepare: %w", ticker, err)
	}
	defer stmt.Close()

	for _, p := range series {
		if _, err := stmt.ExecContext(ctx, ticker, p.Date, p.Close); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("archive %s: insert: %w", ticker, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive %s: commit: %w", ticker, err)
	}

	h.log.Debug("candles archived",
		logger.String("ticker", ticker),
		logger.Int("rows", len(series)))
	return nil
}

// Load reads archived closes for the inclusive range, ordered by date.
func (h *ClickHouseHistory) Load(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	rows, err := h.client.DB().QueryContext(ctx,
		`SELECT date, close FROM daily_closes FINAL
		 WHERE ticker = ? AND date >= ? AND date <= ?
		 ORDER BY date`,
		ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("load archive %s: %w", ticker, err)
	}
	defer rows.Close()

	var series models.PriceSeries
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("load archive %s: scan: %w", ticker, err)
		}
		series = append(series, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load archive %s: %w", ticker, err)
	}
	return series, nil
}
