// Package store defines the storage contract for users, price bars, wave
// alerts and daily summaries.
//
// Every operation validates its input before touching storage and reports
// failures as apperr kinds.
package store

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

// PriceStore is the append-only time series of price bars.
type PriceStore interface {
	// AppendBar inserts a bar. Duplicate (pair, timestamp) bars are kept.
	AppendBar(ctx context.Context, input model.PriceBarInput) (model.PriceBar, error)
	// QueryBars returns the bars for a pair in a range, oldest first.
	QueryBars(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.PriceBar, error)
	// LatestBars returns up to limit bars for a pair, newest first.
	LatestBars(ctx context.Context, pair string, limit int) ([]model.PriceBar, error)
	// Pairs returns the distinct pairs with bars in a range.
	Pairs(ctx context.Context, timeRange model.TimeRange) ([]string, error)
	// BarsAfter returns up to limit bars with an ID greater than afterID, by ID.
	BarsAfter(ctx context.Context, afterID int64, limit int) ([]model.PriceBar, error)
}

// UserDirectory stores users keyed by their LINE identity.
type UserDirectory interface {
	// CreateUser fails with a Conflict if the LINE user ID is taken.
	CreateUser(ctx context.Context, profile model.UserProfile) (model.User, error)
	// UpsertUser creates a user or updates the profile of an existing one as
	// one atomic step, so concurrent calls for a LINE user ID never conflict.
	// created is true for exactly one of them, the call that inserted the row.
	UpsertUser(ctx context.Context, profile model.UserProfile) (user model.User, created bool, err error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByLineID(ctx context.Context, lineUserID string) (model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error)
	SetNotificationPreference(ctx context.Context, id uuid.UUID, enabled bool) (model.User, error)
}

// AlertLedger records wave alerts sent to users.
type AlertLedger interface {
	// RecordAlert fails with NotFound if the user does not exist.
	RecordAlert(ctx context.Context, input model.AlertInput) (model.WaveAlert, error)
	// UpdateStatus moves an alert forward through sent, delivered and read.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AlertStatus) (model.WaveAlert, error)
	GetAlert(ctx context.Context, id uuid.UUID) (model.WaveAlert, error)
	// ListAlertsForUser returns alerts most recently sent first.
	ListAlertsForUser(ctx context.Context, userID uuid.UUID, filter model.AlertFilter) ([]model.WaveAlert, error)
}

// SummaryStore holds one rollup row per pair and UTC day.
type SummaryStore interface {
	UpsertDailySummary(ctx context.Context, input model.DailySummaryInput) (model.DailySummary, error)
	ListDailySummaries(ctx context.Context, pair string, timeRange model.TimeRange) ([]model.DailySummary, error)
	// SummaryPairs returns the distinct pairs with summaries dated in a range.
	SummaryPairs(ctx context.Context, timeRange model.TimeRange) ([]string, error)
}

// Store is a complete storage backend.
type Store interface {
	PriceStore
	UserDirectory
	AlertLedger
	SummaryStore
	// Ping reports whether the backend can currently serve requests.
	Ping(ctx context.Context) error
	Close()
}
