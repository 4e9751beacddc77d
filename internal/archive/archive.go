// Package archive copies price bars and daily summaries into ClickHouse for
// analytics.
//
// Bars are copied incrementally by ID. Summaries can be rewritten, so they go
// into a ReplacingMergeTree and the newest copy of each (pair, date) wins.
package archive

import (
	"context"
	"time"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of bars sent to ClickHouse per insert.
const DefaultBatchSize = 5000

var schema = []string{
	`create table if not exists fx_prices (
		id Int64,
		pair LowCardinality(String),
		timestamp DateTime64(6, 'UTC'),
		open_price Nullable(Decimal(10, 5)),
		high_price Nullable(Decimal(10, 5)),
		low_price Nullable(Decimal(10, 5)),
		close_price Nullable(Decimal(10, 5)),
		volume Nullable(Int32),
		created_at DateTime64(6, 'UTC')
	)
	engine = ReplacingMergeTree
	order by (pair, timestamp, id)`,
	`create table if not exists daily_price_summaries (
		pair LowCardinality(String),
		date Date,
		open_price Nullable(Decimal(10, 5)),
		high_price Nullable(Decimal(10, 5)),
		low_price Nullable(Decimal(10, 5)),
		close_price Nullable(Decimal(10, 5)),
		volume Nullable(Int64),
		volatility Nullable(Decimal(8, 5)),
		archived_at DateTime64(6, 'UTC')
	)
	engine = ReplacingMergeTree(archived_at)
	order by (pair, date)`,
}

// Source is what the Archiver reads from.
type Source interface {
	store.PriceStore
	store.SummaryStore
}

// Archiver copies rows from a Source to a Target.
type Archiver struct {
	source    Source
	target    Target
	batchSize int
	now       func() time.Time
	log       *zap.Logger
}

func New(source Source, target Target, batchSize int, log *zap.Logger) *Archiver {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Archiver{source: source, target: target, batchSize: batchSize, now: time.Now, log: log}
}

// EnsureSchema creates the archive tables if they do not exist.
func (archiver *Archiver) EnsureSchema(ctx context.Context) error {
	for _, sql := range schema {
		if err := archiver.target.Exec(ctx, sql); err != nil {
			return err
		}
	}

	return nil
}

// ExportBars copies every bar with an ID above the highest one archived.
func (archiver *Archiver) ExportBars(ctx context.Context) (int, error) {
	var lastID int64

	if err := archiver.target.QueryRow(ctx, "select max(id) from fx_prices").Scan(&lastID); err != nil {
		return 0, err
	}

	total := 0

	for {
		barList, err := archiver.source.BarsAfter(ctx, lastID, archiver.batchSize)

		if err != nil {
			return total, err
		}

		if len(barList) == 0 {
			return total, nil
		}

		if err := archiver.sendBars(ctx, barList); err != nil {
			return total, err
		}

		total += len(barList)
		lastID = barList[len(barList)-1].ID
		archiver.log.Debug("archived bars", zap.Int("count", len(barList)), zap.Int64("last_id", lastID))

		if len(barList) < archiver.batchSize {
			return total, nil
		}
	}
}

func (archiver *Archiver) sendBars(ctx context.Context, barList []model.PriceBar) error {
	batch, err := archiver.target.PrepareBatch(
		ctx,
		`insert into fx_prices
			(id, pair, timestamp, open_price, high_price, low_price, close_price, volume, created_at)`,
	)

	if err != nil {
		return err
	}

	for _, bar := range barList {
		if err := batch.Append(
			bar.ID,
			bar.Pair,
			bar.Timestamp,
			nullable(bar.Open),
			nullable(bar.High),
			nullable(bar.Low),
			nullable(bar.Close),
			bar.Volume,
			bar.CreatedAt,
		); err != nil {
			return err
		}
	}

	return batch.Send()
}

// ExportSummaries copies every summary dated in a range, whether or not bars
// for its pair are stored.
func (archiver *Archiver) ExportSummaries(ctx context.Context, timeRange model.TimeRange) (int, error) {
	pairs, err := archiver.source.SummaryPairs(ctx, timeRange)

	if err != nil {
		return 0, err
	}

	var summaryList []model.DailySummary

	for _, pair := range pairs {
		pairSummaries, err := archiver.source.ListDailySummaries(ctx, pair, timeRange)

		if err != nil {
			return 0, err
		}

		summaryList = append(summaryList, pairSummaries...)
	}

	if len(summaryList) == 0 {
		return 0, nil
	}

	batch, err := archiver.target.PrepareBatch(
		ctx,
		`insert into daily_price_summaries
			(pair, date, open_price, high_price, low_price, close_price, volume, volatility, archived_at)`,
	)

	if err != nil {
		return 0, err
	}

	archivedAt := archiver.now().UTC()

	for _, summary := range summaryList {
		if err := batch.Append(
			summary.Pair,
			summary.Date,
			nullable(summary.Open),
			nullable(summary.High),
			nullable(summary.Low),
			nullable(summary.Close),
			summary.Volume,
			nullable(summary.Volatility),
			archivedAt,
		); err != nil {
			return 0, err
		}
	}

	return len(summaryList), batch.Send()
}

// nullable converts a NullDecimal to the pointer form the driver uses for
// Nullable columns.
func nullable(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}

	return &value.Decimal
}
