package postgres

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/database"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

var alertColumns = `
	id,
	user_id,
	pair,
	wave_type,
	price,
	timestamp,
	sent_at,
	status
`

var alertQuery = "select" + alertColumns + "from wave_alerts "

func scanAlert(row database.Row, alert *model.WaveAlert) error {
	var waveType int32
	var status string

	if err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&alert.Pair,
		&waveType,
		&alert.Price,
		&alert.Timestamp,
		&alert.SentAt,
		&status,
	); err != nil {
		return err
	}

	alert.WaveType = model.WaveType(waveType)
	alert.Status = model.AlertStatus(status)

	return nil
}

// RecordAlert inserts an alert with the status "sent".
func (store *Store) RecordAlert(ctx context.Context, input model.AlertInput) (model.WaveAlert, error) {
	var alert model.WaveAlert

	input, err := input.Normalize()

	if err != nil {
		return alert, err
	}

	row := store.conn.QueryRow(
		ctx,
		`
		insert into wave_alerts (id, user_id, pair, wave_type, price, timestamp, status)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning`+alertColumns,
		uuid.New(),
		input.UserID,
		input.Pair,
		int32(input.WaveType),
		input.Price,
		input.Timestamp,
		string(model.StatusSent),
	)

	// The foreign key on user_id reports a missing user as NotFound.
	err = scanAlert(row, &alert)

	return alert, notFound(err, "user %s not found", input.UserID)
}

// UpdateStatus moves an alert to a new status, holding a row lock so
// concurrent feedback for the same alert is applied in order.
func (store *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AlertStatus) (model.WaveAlert, error) {
	var alert model.WaveAlert

	if _, err := model.ParseAlertStatus(string(status)); err != nil {
		return alert, err
	}

	err := store.conn.InTx(ctx, func(tx database.Queryable) error {
		row := tx.QueryRow(ctx, alertQuery+"where id = $1 for update", id)

		if err := scanAlert(row, &alert); err != nil {
			return notFound(err, "alert %s not found", id)
		}

		if err := alert.Status.CheckTransition(status); err != nil {
			return err
		}

		if alert.Status == status {
			return nil
		}

		row = tx.QueryRow(
			ctx,
			"update wave_alerts set status = $2 where id = $1 returning"+alertColumns,
			id,
			string(status),
		)

		return scanAlert(row, &alert)
	})

	return alert, err
}

// GetAlert loads an alert by ID.
func (store *Store) GetAlert(ctx context.Context, id uuid.UUID) (model.WaveAlert, error) {
	var alert model.WaveAlert

	row := store.conn.QueryRow(ctx, alertQuery+"where id = $1", id)
	err := scanAlert(row, &alert)

	return alert, notFound(err, "alert %s not found", id)
}

// ListAlertsForUser loads the alerts for a user, most recently sent first.
func (store *Store) ListAlertsForUser(ctx context.Context, userID uuid.UUID, filter model.AlertFilter) ([]model.WaveAlert, error) {
	where := &whereBuilder{}
	where.add("user_id = ?", userID)

	if filter.Pair != "" {
		pair, err := model.NormalizePair(filter.Pair)

		if err != nil {
			return nil, err
		}

		where.add("pair = ?", pair)
	}

	if !filter.Since.IsZero() {
		where.add("sent_at >= ?", filter.Since)
	}

	var exists bool

	if err := store.conn.QueryRow(ctx, "select exists(select 1 from users where id = $1)", userID).Scan(&exists); err != nil {
		return nil, err
	}

	if !exists {
		return nil, apperr.NotFoundf("user %s not found", userID)
	}

	var alertList []model.WaveAlert

	err := model.LoadList(
		ctx,
		store.conn,
		&alertList,
		16,
		scanAlert,
		alertQuery+where.String()+" order by sent_at desc, id desc",
		where.arguments...,
	)

	return alertList, err
}
