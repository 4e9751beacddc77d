// Package alert defines routes for wave alerts
package alert

import (
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/route/util"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/dense-analysis/fxwave/pkg/lax"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Routes serves the /api/alerts endpoints.
type Routes struct {
	alerts store.AlertLedger
	log    *zap.Logger
}

func New(alerts store.AlertLedger, log *zap.Logger) *Routes {
	return &Routes{alerts: alerts, log: log}
}

// Register adds the alert routes to router.
func (routes *Routes) Register(router *mux.Router) {
	router.Handle("/api/alerts", lax.Wrap(lax.View{
		Post: routes.handleSubmitAlert,
	}))
	router.Handle("/api/alerts/{id}", lax.Wrap(lax.View{
		Get: routes.handleAlert,
	}))
	router.Handle("/api/alerts/{id}/status", lax.Wrap(lax.View{
		Put: routes.handleUpdateStatus,
	}))
}

func (routes *Routes) handleSubmitAlert(request *lax.Request) any {
	var input model.AlertInput

	if err := request.JSON(&input); err != nil {
		return util.RespondBadJSON(err)
	}

	alert, err := routes.alerts.RecordAlert(request.Context(), input)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &alert
}

func (routes *Routes) handleAlert(request *lax.Request) any {
	id, response := util.ParseID(request, "id")

	if response != nil {
		return response
	}

	alert, err := routes.alerts.GetAlert(request.Context(), id)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &alert
}

type statusUpdate struct {
	Status model.AlertStatus `json:"status"`
}

func (routes *Routes) handleUpdateStatus(request *lax.Request) any {
	id, response := util.ParseID(request, "id")

	if response != nil {
		return response
	}

	var update statusUpdate

	if err := request.JSON(&update); err != nil {
		return util.RespondBadJSON(err)
	}

	alert, err := routes.alerts.UpdateStatus(request.Context(), id, update.Status)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &alert
}
