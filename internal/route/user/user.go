// Package user defines routes for users and the alerts sent to them
package user

import (
	"net/http"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/route/query"
	"github.com/dense-analysis/fxwave/internal/route/util"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/dense-analysis/fxwave/pkg/lax"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Routes serves the /api/users endpoints.
type Routes struct {
	users  store.UserDirectory
	alerts store.AlertLedger
	log    *zap.Logger
}

func New(users store.UserDirectory, alerts store.AlertLedger, log *zap.Logger) *Routes {
	return &Routes{users: users, alerts: alerts, log: log}
}

// Register adds the user routes to router.
func (routes *Routes) Register(router *mux.Router) {
	router.Handle("/api/users", lax.Wrap(lax.View{
		Post: routes.handleCreate,
		Put:  routes.handleUpsert,
	}))
	router.Handle("/api/users/line/{lineUserID}", lax.Wrap(lax.View{
		Get: routes.handleGetByLineID,
	}))
	router.Handle("/api/users/{id}", lax.Wrap(lax.View{
		Get:   routes.handleGet,
		Patch: routes.handleUpdate,
	}))
	router.Handle("/api/users/{id}/notifications", lax.Wrap(lax.View{
		Put: routes.handleNotifications,
	}))
	router.Handle("/api/users/{id}/alerts", lax.Wrap(lax.View{
		Get: routes.handleAlertList,
	}))
}

func (routes *Routes) handleCreate(request *lax.Request) any {
	var profile model.UserProfile

	if err := request.JSON(&profile); err != nil {
		return util.RespondBadJSON(err)
	}

	user, err := routes.users.CreateUser(request.Context(), profile)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &user
}

func (routes *Routes) handleUpsert(request *lax.Request) any {
	var profile model.UserProfile

	if err := request.JSON(&profile); err != nil {
		return util.RespondBadJSON(err)
	}

	user, created, err := routes.users.UpsertUser(request.Context(), profile)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	if created {
		return lax.MakeResponse(http.StatusCreated, &user)
	}

	return &user
}

func (routes *Routes) handleGet(request *lax.Request) any {
	id, response := util.ParseID(request, "id")

	if response != nil {
		return response
	}

	user, err := routes.users.GetUser(request.Context(), id)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &user
}

func (routes *Routes) handleGetByLineID(request *lax.Request) any {
	user, err := routes.users.GetUserByLineID(request.Context(), request.Var("lineUserID"))

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &user
}

func (routes *Routes) handleUpdate(request *lax.Request) any {
	id, response := util.ParseID(request, "id")

	if response != nil {
		return response
	}

	var update model.UserUpdate

	if err := request.JSON(&update); err != nil {
		return util.RespondBadJSON(err)
	}

	user, err := routes.users.UpdateUser(request.Context(), id, update)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &user
}

type notificationSettings struct {
	Enabled *bool `json:"enabled"`
}

func (routes *Routes) handleNotifications(request *lax.Request) any {
	id, response := util.ParseID(request, "id")

	if response != nil {
		return response
	}

	var settings notificationSettings

	if err := request.JSON(&settings); err != nil {
		return util.RespondBadJSON(err)
	}

	if settings.Enabled == nil {
		return util.RespondValidationError("enabled", "is required")
	}

	user, err := routes.users.SetNotificationPreference(request.Context(), id, *settings.Enabled)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return &user
}

func (routes *Routes) handleAlertList(request *lax.Request) any {
	id, response := util.ParseID(request, "id")

	if response != nil {
		return response
	}

	filter, err := query.AlertFilter(request)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	alertList, err := routes.alerts.ListAlertsForUser(request.Context(), id, filter)

	if err != nil {
		return util.RespondError(routes.log, request, err)
	}

	return alertList
}
