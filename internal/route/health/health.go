// Package health reports whether the service and its storage are usable
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dense-analysis/fxwave/pkg/lax"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ServiceName identifies the service in health responses.
const ServiceName = "fx-wave-detector-backend"

// Version of the API.
const Version = "1.0.0"

// Health statuses.
const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// Storage is what the health check pings. store.Handle implements it.
type Storage interface {
	Ping(ctx context.Context) error
	// Stubbed is true while requests go to a stand-in for the real store.
	Stubbed() bool
}

// Report is the body of a health response.
type Report struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Storage   string  `json:"storage"`
	LatencyMS float64 `json:"latency_ms"`
	Message   string  `json:"message"`
}

// Routes serves / and /health.
type Routes struct {
	storage       Storage
	slowThreshold time.Duration
	log           *zap.Logger
}

// New creates the health routes. A ping slower than slowThreshold is
// reported as degraded.
func New(storage Storage, slowThreshold time.Duration, log *zap.Logger) *Routes {
	return &Routes{storage: storage, slowThreshold: slowThreshold, log: log}
}

func (routes *Routes) Register(router *mux.Router) {
	router.Handle("/", lax.Wrap(lax.View{Get: handleIndex}))
	router.Handle("/health", lax.Wrap(lax.View{Get: routes.handleHealth}))
}

func handleIndex(request *lax.Request) any {
	return map[string]any{
		"message":   "FX Wave Detector API",
		"status":    "running",
		"version":   Version,
		"endpoints": []string{"/health", "/api/users", "/api/prices", "/api/fx/{pair}", "/api/alerts", "/api/summaries"},
	}
}

// Check pings the storage and classifies the result.
func (routes *Routes) Check(ctx context.Context) Report {
	report := Report{Service: ServiceName, Storage: "reachable"}

	if routes.storage.Stubbed() {
		report.Status = StatusUnavailable
		report.Storage = "unreachable"
		report.Message = "storage could not be reached at startup, reconnecting"

		return report
	}

	start := time.Now()
	err := routes.storage.Ping(ctx)
	latency := time.Since(start)
	report.LatencyMS = float64(latency.Microseconds()) / 1000

	switch {
	case err != nil:
		routes.log.Warn("storage ping failed", zap.Error(err))
		report.Status = StatusUnavailable
		report.Storage = "unreachable"
		report.Message = "storage is not responding"
	case routes.slowThreshold > 0 && latency > routes.slowThreshold:
		report.Status = StatusDegraded
		report.Message = "storage is responding slowly"
	default:
		report.Status = StatusHealthy
		report.Message = "all systems operational"
	}

	return report
}

func (routes *Routes) handleHealth(request *lax.Request) any {
	report := routes.Check(request.Context())

	if report.Status == StatusUnavailable {
		return lax.MakeResponse(http.StatusServiceUnavailable, &report)
	}

	return &report
}
