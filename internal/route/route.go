// Package route assembles the fxwave HTTP API.
package route

import (
	"net/http"
	"time"

	"github.com/dense-analysis/fxwave/internal/route/alert"
	"github.com/dense-analysis/fxwave/internal/route/health"
	"github.com/dense-analysis/fxwave/internal/route/price"
	"github.com/dense-analysis/fxwave/internal/route/summary"
	"github.com/dense-analysis/fxwave/internal/route/user"
	"github.com/dense-analysis/fxwave/internal/route/util"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Storage is the store the API serves from, with a health flag.
type Storage interface {
	store.Store
	Stubbed() bool
}

// Options for NewRouter.
type Options struct {
	// RequestTimeout bounds every request, including its store calls.
	RequestTimeout time.Duration
	// SlowStorage is the ping latency above which /health reports degraded.
	SlowStorage time.Duration
}

// NewRouter creates the handler for every API route.
func NewRouter(storage Storage, options Options, log *zap.Logger) http.Handler {
	router := mux.NewRouter().StrictSlash(true)

	health.New(storage, options.SlowStorage, log).Register(router)
	user.New(storage, storage, log).Register(router)
	price.New(storage, log).Register(router)
	alert.New(storage, log).Register(router)
	summary.New(storage, log).Register(router)

	router.Use(util.WithAccessLog(log))

	if options.RequestTimeout > 0 {
		router.Use(util.WithTimeout(options.RequestTimeout))
	}

	return router
}
