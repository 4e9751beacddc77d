package store

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

// Unavailable is the Store used when no backend could be reached.
//
// Input is still validated, then every call fails with an apperr.Unavailable
// error carrying Reason.
type Unavailable struct {
	Reason error
}

func (u Unavailable) err() error {
	return apperr.Wrap(apperr.Unavailable, "storage unavailable", u.Reason)
}

// checkSeries reports bad query input ahead of the outage, as a real
// backend would.
func (u Unavailable) checkSeries(pair string, timeRange model.TimeRange) error {
	if _, err := model.NormalizePair(pair); err != nil {
		return err
	}

	if err := timeRange.Validate(); err != nil {
		return err
	}

	return u.err()
}

func (u Unavailable) AppendBar(_ context.Context, input model.PriceBarInput) (model.PriceBar, error) {
	if _, err := input.Normalize(); err != nil {
		return model.PriceBar{}, err
	}

	return model.PriceBar{}, u.err()
}

func (u Unavailable) QueryBars(_ context.Context, pair string, timeRange model.TimeRange) ([]model.PriceBar, error) {
	return nil, u.checkSeries(pair, timeRange)
}

func (u Unavailable) LatestBars(_ context.Context, pair string, _ int) ([]model.PriceBar, error) {
	return nil, u.checkSeries(pair, model.TimeRange{})
}

func (u Unavailable) Pairs(context.Context, model.TimeRange) ([]string, error) {
	return nil, u.err()
}

func (u Unavailable) BarsAfter(context.Context, int64, int) ([]model.PriceBar, error) {
	return nil, u.err()
}

func (u Unavailable) CreateUser(_ context.Context, profile model.UserProfile) (model.User, error) {
	if _, err := profile.Normalize(); err != nil {
		return model.User{}, err
	}

	return model.User{}, u.err()
}

func (u Unavailable) UpsertUser(_ context.Context, profile model.UserProfile) (model.User, bool, error) {
	if _, err := profile.Normalize(); err != nil {
		return model.User{}, false, err
	}

	return model.User{}, false, u.err()
}

func (u Unavailable) GetUser(context.Context, uuid.UUID) (model.User, error) {
	return model.User{}, u.err()
}

func (u Unavailable) GetUserByLineID(context.Context, string) (model.User, error) {
	return model.User{}, u.err()
}

func (u Unavailable) UpdateUser(_ context.Context, _ uuid.UUID, update model.UserUpdate) (model.User, error) {
	if _, err := update.Normalize(); err != nil {
		return model.User{}, err
	}

	return model.User{}, u.err()
}

func (u Unavailable) SetNotificationPreference(context.Context, uuid.UUID, bool) (model.User, error) {
	return model.User{}, u.err()
}

func (u Unavailable) RecordAlert(_ context.Context, input model.AlertInput) (model.WaveAlert, error) {
	if _, err := input.Normalize(); err != nil {
		return model.WaveAlert{}, err
	}

	return model.WaveAlert{}, u.err()
}

func (u Unavailable) UpdateStatus(_ context.Context, _ uuid.UUID, status model.AlertStatus) (model.WaveAlert, error) {
	if _, err := model.ParseAlertStatus(string(status)); err != nil {
		return model.WaveAlert{}, err
	}

	return model.WaveAlert{}, u.err()
}

func (u Unavailable) GetAlert(context.Context, uuid.UUID) (model.WaveAlert, error) {
	return model.WaveAlert{}, u.err()
}

func (u Unavailable) ListAlertsForUser(_ context.Context, _ uuid.UUID, filter model.AlertFilter) ([]model.WaveAlert, error) {
	if filter.Pair != "" {
		if _, err := model.NormalizePair(filter.Pair); err != nil {
			return nil, err
		}
	}

	return nil, u.err()
}

func (u Unavailable) UpsertDailySummary(_ context.Context, input model.DailySummaryInput) (model.DailySummary, error) {
	if _, err := input.Normalize(); err != nil {
		return model.DailySummary{}, err
	}

	return model.DailySummary{}, u.err()
}

func (u Unavailable) ListDailySummaries(_ context.Context, pair string, timeRange model.TimeRange) ([]model.DailySummary, error) {
	return nil, u.checkSeries(pair, timeRange)
}

func (u Unavailable) SummaryPairs(_ context.Context, timeRange model.TimeRange) ([]string, error) {
	if err := timeRange.Validate(); err != nil {
		return nil, err
	}

	return nil, u.err()
}

func (u Unavailable) Ping(context.Context) error {
	return u.err()
}

func (u Unavailable) Close() {}
