package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

// Handle is a Store that forwards to a backend which can be replaced while
// requests are running.
type Handle struct {
	current atomic.Pointer[backend]
	// mu orders Swap against Close.
	mu     sync.Mutex
	closed bool
}

type backend struct {
	store Store
}

// NewHandle creates a Handle forwarding to initial.
func NewHandle(initial Store) *Handle {
	handle := &Handle{}
	handle.Swap(initial)

	return handle
}

// Current returns the backend requests are currently sent to.
func (handle *Handle) Current() Store {
	return handle.current.Load().store
}

// Swap installs a new backend and returns the previous one.
//
// After Close, next is closed instead of installed and nil is returned.
func (handle *Handle) Swap(next Store) Store {
	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.closed {
		next.Close()

		return nil
	}

	previous := handle.current.Swap(&backend{next})

	if previous == nil {
		return nil
	}

	return previous.store
}

// Stubbed reports whether requests are going to the Unavailable stub.
func (handle *Handle) Stubbed() bool {
	_, stub := handle.Current().(Unavailable)

	return stub
}

func (handle *Handle) AppendBar(ctx context.Context, input model.PriceBarInput) (model.PriceBar, error) {
	return handle.Current().AppendBar(ctx, input)
}

func (handle *Handle) QueryBars(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.PriceBar, error) {
	return handle.Current().QueryBars(ctx, pair, timeRange)
}

func (handle *Handle) LatestBars(ctx context.Context, pair string, limit int) ([]model.PriceBar, error) {
	return handle.Current().LatestBars(ctx, pair, limit)
}

func (handle *Handle) Pairs(ctx context.Context, timeRange model.TimeRange) ([]string, error) {
	return handle.Current().Pairs(ctx, timeRange)
}

func (handle *Handle) BarsAfter(ctx context.Context, afterID int64, limit int) ([]model.PriceBar, error) {
	return handle.Current().BarsAfter(ctx, afterID, limit)
}

func (handle *Handle) CreateUser(ctx context.Context, profile model.UserProfile) (model.User, error) {
	return handle.Current().CreateUser(ctx, profile)
}

func (handle *Handle) UpsertUser(ctx context.Context, profile model.UserProfile) (model.User, bool, error) {
	return handle.Current().UpsertUser(ctx, profile)
}

func (handle *Handle) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	return handle.Current().GetUser(ctx, id)
}

func (handle *Handle) GetUserByLineID(ctx context.Context, lineUserID string) (model.User, error) {
	return handle.Current().GetUserByLineID(ctx, lineUserID)
}

func (handle *Handle) UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error) {
	return handle.Current().UpdateUser(ctx, id, update)
}

func (handle *Handle) SetNotificationPreference(ctx context.Context, id uuid.UUID, enabled bool) (model.User, error) {
	return handle.Current().SetNotificationPreference(ctx, id, enabled)
}

func (handle *Handle) RecordAlert(ctx context.Context, input model.AlertInput) (model.WaveAlert, error) {
	return handle.Current().RecordAlert(ctx, input)
}

func (handle *Handle) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AlertStatus) (model.WaveAlert, error) {
	return handle.Current().UpdateStatus(ctx, id, status)
}

func (handle *Handle) GetAlert(ctx context.Context, id uuid.UUID) (model.WaveAlert, error) {
	return handle.Current().GetAlert(ctx, id)
}

func (handle *Handle) ListAlertsForUser(ctx context.Context, userID uuid.UUID, filter model.AlertFilter) ([]model.WaveAlert, error) {
	return handle.Current().ListAlertsForUser(ctx, userID, filter)
}

func (handle *Handle) UpsertDailySummary(ctx context.Context, input model.DailySummaryInput) (model.DailySummary, error) {
	return handle.Current().UpsertDailySummary(ctx, input)
}

func (handle *Handle) ListDailySummaries(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.DailySummary, error) {
	return handle.Current().ListDailySummaries(ctx, pair, timeRange)
}

func (handle *Handle) SummaryPairs(ctx context.Context, timeRange model.TimeRange) ([]string, error) {
	return handle.Current().SummaryPairs(ctx, timeRange)
}

func (handle *Handle) Ping(ctx context.Context) error {
	return handle.Current().Ping(ctx)
}

// Close closes the current backend. Backends swapped in later are closed
// immediately.
func (handle *Handle) Close() {
	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.closed {
		return
	}

	handle.closed = true
	handle.Current().Close()
}
