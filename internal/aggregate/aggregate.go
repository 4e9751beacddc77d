// Package aggregate rolls price bars up into daily summaries.
package aggregate

import (
	"context"
	"time"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Rollup computes the summary of bars, which must be sorted oldest first.
//
// ok is false when there are no bars to summarize.
func Rollup(pair string, day time.Time, bars []model.PriceBar) (summary model.DailySummaryInput, ok bool) {
	if len(bars) == 0 {
		return summary, false
	}

	summary.Pair = pair
	summary.Date = model.TruncateDay(day)

	for _, bar := range bars {
		if !summary.Open.Valid && bar.Open.Valid {
			summary.Open = bar.Open
		}

		if bar.Close.Valid {
			summary.Close = bar.Close
		}

		if bar.High.Valid && (!summary.High.Valid || bar.High.Decimal.GreaterThan(summary.High.Decimal)) {
			summary.High = bar.High
		}

		if bar.Low.Valid && (!summary.Low.Valid || bar.Low.Decimal.LessThan(summary.Low.Decimal)) {
			summary.Low = bar.Low
		}

		if bar.Volume != nil {
			total := int64(*bar.Volume)

			if summary.Volume != nil {
				total += *summary.Volume
			}

			summary.Volume = &total
		}
	}

	summary.Volatility = Volatility(summary.High, summary.Low)

	return summary, true
}

// Volatility is the day's range as a percentage of the low.
func Volatility(high, low decimal.NullDecimal) decimal.NullDecimal {
	if !high.Valid || !low.Valid || !low.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(
		high.Decimal.Sub(low.Decimal).Div(low.Decimal).Mul(hundred).Round(model.PriceScale),
	)
}

// Source is what the Aggregator needs from storage.
type Source interface {
	store.PriceStore
	store.SummaryStore
}

// Aggregator writes daily summaries from the stored bars.
type Aggregator struct {
	store Source
	log   *zap.Logger
}

// New creates an Aggregator.
func New(source Source, log *zap.Logger) *Aggregator {
	return &Aggregator{store: source, log: log}
}

// RunDay summarizes every pair with bars on the UTC day containing day.
// Existing summaries for that day are replaced. A volatility too large to
// store is written as null, and a pair whose summary fails validation is
// skipped so the other pairs are still summarized.
func (aggregator *Aggregator) RunDay(ctx context.Context, day time.Time) ([]model.DailySummary, error) {
	start := model.TruncateDay(day)
	timeRange := model.TimeRange{From: start, To: start.AddDate(0, 0, 1)}
	pairs, err := aggregator.store.Pairs(ctx, timeRange)

	if err != nil {
		return nil, err
	}

	summaries := make([]model.DailySummary, 0, len(pairs))

	for _, pair := range pairs {
		bars, err := aggregator.store.QueryBars(ctx, pair, timeRange)

		if err != nil {
			return summaries, err
		}

		input, ok := Rollup(pair, start, bars)

		if !ok {
			continue
		}

		if _, err := model.NormalizeVolatility("volatility", input.Volatility); err != nil {
			aggregator.log.Warn(
				"volatility out of range, storing null",
				zap.String("pair", pair),
				zap.Time("date", start),
				zap.String("volatility", input.Volatility.Decimal.String()),
			)
			input.Volatility = decimal.NullDecimal{}
		}

		summary, err := aggregator.store.UpsertDailySummary(ctx, input)

		if apperr.KindOf(err) == apperr.Validation {
			aggregator.log.Warn("skipped invalid summary", zap.String("pair", pair), zap.Time("date", start), zap.Error(err))

			continue
		}

		if err != nil {
			return summaries, err
		}

		aggregator.log.Debug(
			"summarized day",
			zap.String("pair", pair),
			zap.Time("date", start),
			zap.Int("bars", len(bars)),
		)
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
