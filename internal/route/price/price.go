// Package price defines routes for FX price bars and quotes
package price

import (
	"time"

	"github.com/dense-analysis/fxwave/internal/aggregate"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/route/query"
	"github.com/dense-analysis/fxwave/internal/route/util"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/dense-analysis/fxwave/pkg/lax"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// quoteWindow is how far back a quote looks for its change and volume.
const quoteWindow = 24 * time.Hour

// Routes serves /api/prices and /api/fx.
type Routes struct {
	prices store.PriceStore
	log    *zap.Logger
}

func New(prices store.PriceStore, log *zap.Logger) *Routes {
	return &Routes{prices: prices, log: log}
}

// Register adds the price routes to router.
func (routes *Routes) Register(router *mux.Router) {
	router.Handle("/api/prices", lax.Wrap(lax.View{
		Get:  routes.handleQuery,
		Post: routes.handleAppend,
	}))
	router.Handle("/api/fx/{pair}", lax.Wrap(lax.View{
		Get: routes.handleQuote,
	}))
}

func (routes *Routes) handleAppend(request *lax.Request) any {
	var input model.PriceBarInput

	if err := request.JSON(&input); err != nil {
		return util.RespondBadJSON(err)
	}

	bar, err := routes.prices.AppendBar(request.Context(), input)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &bar
}

func (routes *Routes) handleQuery(request *lax.Request) any {
	pair, err := query.Pair(request)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	timeRange, err := query.TimeRange(request)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	barList, err := routes.prices.QueryBars(request.Context(), pair, timeRange)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return barList
}

// Quote is the latest price of a pair with its movement over the last day.
type Quote struct {
	Pair          string              `json:"pair"`
	Price         decimal.NullDecimal `json:"price"`
	Timestamp     time.Time           `json:"timestamp"`
	Change        decimal.NullDecimal `json:"change_24h"`
	ChangePercent decimal.NullDecimal `json:"change_percent_24h"`
	High          decimal.NullDecimal `json:"high_24h"`
	Low           decimal.NullDecimal `json:"low_24h"`
	Volume        *int64              `json:"volume_24h"`
	Status        string              `json:"status"`
}

// BuildQuote summarizes bars from the day before the latest one, oldest first.
func BuildQuote(pair string, bars []model.PriceBar) (Quote, bool) {
	if len(bars) == 0 {
		return Quote{}, false
	}

	latest := bars[len(bars)-1]
	rollup, _ := aggregate.Rollup(pair, latest.Timestamp, bars)
	quote := Quote{
		Pair:      pair,
		Price:     rollup.Close,
		Timestamp: latest.Timestamp,
		High:      rollup.High,
		Low:       rollup.Low,
		Volume:    rollup.Volume,
		Status:    "live",
	}

	if rollup.Open.Valid && rollup.Close.Valid {
		change := rollup.Close.Decimal.Sub(rollup.Open.Decimal)
		quote.Change = decimal.NewNullDecimal(change)
		quote.ChangePercent = decimal.NewNullDecimal(
			change.Div(rollup.Open.Decimal).Mul(decimal.NewFromInt(100)).Round(model.PriceScale),
		)
	}

	return quote, true
}

func (routes *Routes) handleQuote(request *lax.Request) any {
	pair, err := model.NormalizePair(request.Var("pair"))

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	latest, err := routes.prices.LatestBars(request.Context(), pair, 1)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	if len(latest) == 0 {
		return util.RespondNotFound("no prices recorded for " + pair)
	}

	end := latest[0].Timestamp
	barList, err := routes.prices.QueryBars(request.Context(), pair, model.TimeRange{
		From: end.Add(-quoteWindow),
		To:   end.Add(time.Microsecond),
	})

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	quote, ok := BuildQuote(pair, barList)

	if !ok {
		return util.RespondNotFound("no prices recorded for " + pair)
	}

	return &quote
}
