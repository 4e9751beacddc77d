package memory

import (
	"context"
	"sort"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

// RecordAlert inserts an alert with the status "sent".
func (store *Store) RecordAlert(ctx context.Context, input model.AlertInput) (model.WaveAlert, error) {
	input, err := input.Normalize()

	if err != nil {
		return model.WaveAlert{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.users[input.UserID]; !ok {
		return model.WaveAlert{}, apperr.NotFoundf("user %s not found", input.UserID)
	}

	alert := model.WaveAlert{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Pair:      input.Pair,
		WaveType:  input.WaveType,
		Price:     input.Price,
		Timestamp: input.Timestamp,
		SentAt:    store.timestamp(),
		Status:    model.StatusSent,
	}
	store.alerts[alert.ID] = alert

	return alert, nil
}

// UpdateStatus moves an alert forward through sent, delivered and read.
func (store *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AlertStatus) (model.WaveAlert, error) {
	if _, err := model.ParseAlertStatus(string(status)); err != nil {
		return model.WaveAlert{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	alert, ok := store.alerts[id]

	if !ok {
		return alert, apperr.NotFoundf("alert %s not found", id)
	}

	if err := alert.Status.CheckTransition(status); err != nil {
		return alert, err
	}

	alert.Status = status
	store.alerts[id] = alert

	return alert, nil
}

func (store *Store) GetAlert(ctx context.Context, id uuid.UUID) (model.WaveAlert, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	alert, ok := store.alerts[id]

	if !ok {
		return alert, apperr.NotFoundf("alert %s not found", id)
	}

	return alert, nil
}

// ListAlertsForUser returns alerts most recently sent first.
func (store *Store) ListAlertsForUser(ctx context.Context, userID uuid.UUID, filter model.AlertFilter) ([]model.WaveAlert, error) {
	if filter.Pair != "" {
		pair, err := model.NormalizePair(filter.Pair)

		if err != nil {
			return nil, err
		}

		filter.Pair = pair
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	if _, ok := store.users[userID]; !ok {
		return nil, apperr.NotFoundf("user %s not found", userID)
	}

	alertList := make([]model.WaveAlert, 0, 16)

	for _, alert := range store.alerts {
		if alert.UserID != userID {
			continue
		}

		if filter.Pair != "" && alert.Pair != filter.Pair {
			continue
		}

		if !filter.Since.IsZero() && alert.SentAt.Before(filter.Since) {
			continue
		}

		alertList = append(alertList, alert)
	}

	sort.Slice(alertList, func(i, j int) bool {
		if !alertList[i].SentAt.Equal(alertList[j].SentAt) {
			return alertList[i].SentAt.After(alertList[j].SentAt)
		}

		return alertList[i].ID.String() > alertList[j].ID.String()
	})

	return alertList, nil
}
