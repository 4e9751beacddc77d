// Package summary defines routes for daily price summaries
package summary

import (
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/route/query"
	"github.com/dense-analysis/fxwave/internal/route/util"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/dense-analysis/fxwave/pkg/lax"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Routes struct {
	summaries store.SummaryStore
	log       *zap.Logger
}

func New(summaries store.SummaryStore, log *zap.Logger) *Routes {
	return &Routes{summaries: summaries, log: log}
}

func (routes *Routes) Register(router *mux.Router) {
	router.Handle("/api/summaries", lax.Wrap(lax.View{
		Get: routes.handleList,
		Put: routes.handleUpsert,
	}))
}

func (routes *Routes) handleUpsert(request *lax.Request) any {
	var input model.DailySummaryInput

	if err := request.JSON(&input); err != nil {
		return util.RespondBadJSON(err)
	}

	summary, err := routes.summaries.UpsertDailySummary(request.Context(), input)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &summary
}

func (routes *Routes) handleList(request *lax.Request) any {
	pair, err := query.Pair(request)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	timeRange, err := query.TimeRange(request)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	summaryList, err := routes.summaries.ListDailySummaries(request.Context(), pair, timeRange)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return summaryList
}
