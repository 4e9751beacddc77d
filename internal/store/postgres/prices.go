package postgres

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/database"
	"github.com/dense-analysis/fxwave/internal/model"
)

var barQuery = `
select
	id,
	pair,
	timestamp,
	open_price,
	high_price,
	low_price,
	close_price,
	volume,
	created_at
from fx_prices
`

func scanBar(row database.Row, bar *model.PriceBar) error {
	return row.Scan(
		&bar.ID,
		&bar.Pair,
		&bar.Timestamp,
		&bar.Open,
		&bar.High,
		&bar.Low,
		&bar.Close,
		&bar.Volume,
		&bar.CreatedAt,
	)
}

// AppendBar inserts a price bar.
func (store *Store) AppendBar(ctx context.Context, input model.PriceBarInput) (model.PriceBar, error) {
	var bar model.PriceBar

	input, err := input.Normalize()

	if err != nil {
		return bar, err
	}

	row := store.conn.QueryRow(
		ctx,
		`
		insert into fx_prices (pair, timestamp, open_price, high_price, low_price, close_price, volume)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id, pair, timestamp, open_price, high_price, low_price, close_price, volume, created_at
		`,
		input.Pair,
		input.Timestamp,
		input.Open,
		input.High,
		input.Low,
		input.Close,
		input.Volume,
	)

	err = scanBar(row, &bar)

	return bar, err
}

// QueryBars loads the bars for a pair in a range, oldest first.
func (store *Store) QueryBars(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.PriceBar, error) {
	pair, err := model.NormalizePair(pair)

	if err != nil {
		return nil, err
	}

	if err := timeRange.Validate(); err != nil {
		return nil, err
	}

	where := &whereBuilder{}
	where.add("pair = ?", pair)
	where.timeRange("timestamp", timeRange)

	var barList []model.PriceBar

	err = model.LoadList(
		ctx,
		store.conn,
		&barList,
		64,
		scanBar,
		barQuery+where.String()+" order by timestamp, id",
		where.arguments...,
	)

	return barList, err
}

// LatestBars loads the newest bars for a pair.
func (store *Store) LatestBars(ctx context.Context, pair string, limit int) ([]model.PriceBar, error) {
	pair, err := model.NormalizePair(pair)

	if err != nil || limit <= 0 {
		return nil, err
	}

	var barList []model.PriceBar

	err = model.LoadList(
		ctx,
		store.conn,
		&barList,
		limit,
		scanBar,
		barQuery+"where pair = $1 order by timestamp desc, id desc limit $2",
		pair,
		limit,
	)

	return barList, err
}

// Pairs loads the distinct pairs which have bars in a range.
func (store *Store) Pairs(ctx context.Context, timeRange model.TimeRange) ([]string, error) {
	where := &whereBuilder{}
	where.timeRange("timestamp", timeRange)

	var pairList []string

	err := model.LoadList(
		ctx,
		store.conn,
		&pairList,
		8,
		func(row database.Row, pair *string) error {
			return row.Scan(pair)
		},
		"select distinct pair from fx_prices"+where.String()+" order by pair",
		where.arguments...,
	)

	return pairList, err
}

// BarsAfter loads bars in insertion order for exporting.
func (store *Store) BarsAfter(ctx context.Context, afterID int64, limit int) ([]model.PriceBar, error) {
	if limit <= 0 {
		return nil, nil
	}

	var barList []model.PriceBar

	err := model.LoadList(
		ctx,
		store.conn,
		&barList,
		limit,
		scanBar,
		barQuery+"where id > $1 order by id limit $2",
		afterID,
		limit,
	)

	return barList, err
}
