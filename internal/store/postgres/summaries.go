package postgres

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/database"
	"github.com/dense-analysis/fxwave/internal/model"
)

var summaryColumns = `
	id,
	pair,
	date,
	open_price,
	high_price,
	low_price,
	close_price,
	volume,
	volatility,
	created_at
`

func scanSummary(row database.Row, summary *model.DailySummary) error {
	return row.Scan(
		&summary.ID,
		&summary.Pair,
		&summary.Date,
		&summary.Open,
		&summary.High,
		&summary.Low,
		&summary.Close,
		&summary.Volume,
		&summary.Volatility,
		&summary.CreatedAt,
	)
}

// UpsertDailySummary writes the rollup for a pair and day, replacing any
// earlier rollup for the same day.
func (store *Store) UpsertDailySummary(ctx context.Context, input model.DailySummaryInput) (model.DailySummary, error) {
	var summary model.DailySummary

	input, err := input.Normalize()

	if err != nil {
		return summary, err
	}

	row := store.conn.QueryRow(
		ctx,
		`
		insert into daily_price_summaries
			(pair, date, open_price, high_price, low_price, close_price, volume, volatility)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		on conflict (pair, date) do update set
			open_price = excluded.open_price,
			high_price = excluded.high_price,
			low_price = excluded.low_price,
			close_price = excluded.close_price,
			volume = excluded.volume,
			volatility = excluded.volatility,
			created_at = clock_timestamp()
		returning`+summaryColumns,
		input.Pair,
		input.Date,
		input.Open,
		input.High,
		input.Low,
		input.Close,
		input.Volume,
		input.Volatility,
	)

	err = scanSummary(row, &summary)

	return summary, err
}

// ListDailySummaries loads the rollups for a pair in a range, oldest first.
func (store *Store) ListDailySummaries(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.DailySummary, error) {
	pair, err := model.NormalizePair(pair)

	if err != nil {
		return nil, err
	}

	if err := timeRange.Validate(); err != nil {
		return nil, err
	}

	where := &whereBuilder{}
	where.add("pair = ?", pair)
	where.timeRange("date", timeRange)

	var summaryList []model.DailySummary

	err = model.LoadList(
		ctx,
		store.conn,
		&summaryList,
		31,
		scanSummary,
		"select"+summaryColumns+"from daily_price_summaries"+where.String()+" order by date",
		where.arguments...,
	)

	return summaryList, err
}

// SummaryPairs loads the distinct pairs with rollups dated in a range.
func (store *Store) SummaryPairs(ctx context.Context, timeRange model.TimeRange) ([]string, error) {
	if err := timeRange.Validate(); err != nil {
		return nil, err
	}

	where := &whereBuilder{}
	where.timeRange("date", timeRange)

	var pairList []string

	err := model.LoadList(
		ctx,
		store.conn,
		&pairList,
		8,
		func(row database.Row, pair *string) error {
			return row.Scan(pair)
		},
		"select distinct pair from daily_price_summaries"+where.String()+" order by pair",
		where.arguments...,
	)

	return pairList, err
}
