package postgres

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/database"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

var userColumns = `
	id,
	line_user_id,
	display_name,
	picture_url,
	email,
	line_notifications_enabled,
	created_at,
	updated_at
`

var userQuery = "select" + userColumns + "from users "

func scanUser(row database.Row, user *model.User) error {
	return row.Scan(
		&user.ID,
		&user.LineUserID,
		&user.DisplayName,
		&user.PictureURL,
		&user.Email,
		&user.NotificationsEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// CreateUser inserts a new user. The unique index on line_user_id decides
// conflicts, so a duplicate never leaves a second row behind.
func (store *Store) CreateUser(ctx context.Context, profile model.UserProfile) (model.User, error) {
	var user model.User

	profile, err := profile.Normalize()

	if err != nil {
		return user, err
	}

	row := store.conn.QueryRow(
		ctx,
		`
		insert into users (id, line_user_id, display_name, picture_url, email, line_notifications_enabled)
		values ($1, $2, $3, $4, $5, coalesce($6::boolean, true))
		returning`+userColumns,
		uuid.New(),
		profile.LineUserID,
		profile.DisplayName,
		profile.PictureURL,
		profile.Email,
		profile.NotificationsEnabled,
	)

	if err := scanUser(row, &user); err != nil {
		if apperr.KindOf(err) == apperr.Conflict {
			return user, apperr.Wrap(apperr.Conflict, "a user with this line_user_id already exists", err)
		}

		return user, err
	}

	return user, nil
}

// UpsertUser creates a user or syncs the profile of an existing one in a
// single statement, so concurrent calls for one identity cannot race.
func (store *Store) UpsertUser(ctx context.Context, profile model.UserProfile) (model.User, bool, error) {
	var user model.User
	var created bool

	profile, err := profile.Normalize()

	if err != nil {
		return user, false, err
	}

	row := store.conn.QueryRow(
		ctx,
		`
		insert into users (id, line_user_id, display_name, picture_url, email, line_notifications_enabled)
		values ($1, $2, $3, $4, $5, coalesce($6::boolean, true))
		on conflict (line_user_id) do update set
			display_name = coalesce($3, users.display_name),
			picture_url = coalesce($4, users.picture_url),
			email = coalesce($5, users.email),
			line_notifications_enabled = coalesce($6::boolean, users.line_notifications_enabled),
			updated_at = clock_timestamp()
		returning`+userColumns+`, (xmax = 0) as created`,
		uuid.New(),
		profile.LineUserID,
		profile.DisplayName,
		profile.PictureURL,
		profile.Email,
		profile.NotificationsEnabled,
	)

	err = row.Scan(
		&user.ID,
		&user.LineUserID,
		&user.DisplayName,
		&user.PictureURL,
		&user.Email,
		&user.NotificationsEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
		&created,
	)

	return user, created, err
}

// GetUser loads a user by ID.
func (store *Store) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User

	row := store.conn.QueryRow(ctx, userQuery+"where id = $1", id)
	err := scanUser(row, &user)

	return user, notFound(err, "user %s not found", id)
}

// GetUserByLineID loads a user by their LINE user ID.
func (store *Store) GetUserByLineID(ctx context.Context, lineUserID string) (model.User, error) {
	var user model.User

	row := store.conn.QueryRow(ctx, userQuery+"where line_user_id = $1", lineUserID)
	err := scanUser(row, &user)

	return user, notFound(err, "user with line_user_id %q not found", lineUserID)
}

// UpdateUser changes the profile fields which are set in update.
func (store *Store) UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error) {
	var user model.User

	update, err := update.Normalize()

	if err != nil {
		return user, err
	}

	row := store.conn.QueryRow(
		ctx,
		`
		update users set
			display_name = coalesce($2, display_name),
			picture_url = coalesce($3, picture_url),
			email = coalesce($4, email),
			line_notifications_enabled = coalesce($5::boolean, line_notifications_enabled),
			updated_at = clock_timestamp()
		where id = $1
		returning`+userColumns,
		id,
		update.DisplayName,
		update.PictureURL,
		update.Email,
		update.NotificationsEnabled,
	)

	err = scanUser(row, &user)

	return user, notFound(err, "user %s not found", id)
}

// SetNotificationPreference turns LINE notifications on or off for a user.
func (store *Store) SetNotificationPreference(ctx context.Context, id uuid.UUID, enabled bool) (model.User, error) {
	return store.UpdateUser(ctx, id, model.UserUpdate{NotificationsEnabled: &enabled})
}
