package memory

import (
	"context"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/google/uuid"
)

func applyUpdate(user *model.User, update model.UserUpdate) {
	if update.DisplayName != nil {
		user.DisplayName = update.DisplayName
	}

	if update.PictureURL != nil {
		user.PictureURL = update.PictureURL
	}

	if update.Email != nil {
		user.Email = update.Email
	}

	if update.NotificationsEnabled != nil {
		user.NotificationsEnabled = *update.NotificationsEnabled
	}
}

// insertUser must be called with mu held for writing.
func (store *Store) insertUser(profile model.UserProfile) model.User {
	now := store.timestamp()
	user := model.User{
		ID:                   uuid.New(),
		LineUserID:           profile.LineUserID,
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	applyUpdate(&user, profile.UserUpdate)
	store.users[user.ID] = user
	store.lineUserIDs[user.LineUserID] = user.ID

	return user
}

// updateUser must be called with mu held for writing.
func (store *Store) updateUser(id uuid.UUID, update model.UserUpdate) (model.User, error) {
	user, ok := store.users[id]

	if !ok {
		return user, apperr.NotFoundf("user %s not found", id)
	}

	applyUpdate(&user, update)
	user.UpdatedAt = store.timestamp()
	store.users[id] = user

	return user, nil
}

// CreateUser inserts a new user, failing with a Conflict on a duplicate LINE ID.
func (store *Store) CreateUser(ctx context.Context, profile model.UserProfile) (model.User, error) {
	profile, err := profile.Normalize()

	if err != nil {
		return model.User{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, taken := store.lineUserIDs[profile.LineUserID]; taken {
		return model.User{}, apperr.Conflictf("a user with this line_user_id already exists")
	}

	return store.insertUser(profile), nil
}

// UpsertUser creates a user or syncs the profile of an existing one.
func (store *Store) UpsertUser(ctx context.Context, profile model.UserProfile) (model.User, bool, error) {
	profile, err := profile.Normalize()

	if err != nil {
		return model.User{}, false, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if id, ok := store.lineUserIDs[profile.LineUserID]; ok {
		user, err := store.updateUser(id, profile.UserUpdate)

		return user, false, err
	}

	return store.insertUser(profile), true, nil
}

func (store *Store) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	user, ok := store.users[id]

	if !ok {
		return user, apperr.NotFoundf("user %s not found", id)
	}

	return user, nil
}

func (store *Store) GetUserByLineID(ctx context.Context, lineUserID string) (model.User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	id, ok := store.lineUserIDs[lineUserID]

	if !ok {
		return model.User{}, apperr.NotFoundf("user with line_user_id %q not found", lineUserID)
	}

	return store.users[id], nil
}

func (store *Store) UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error) {
	update, err := update.Normalize()

	if err != nil {
		return model.User{}, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	return store.updateUser(id, update)
}

func (store *Store) SetNotificationPreference(ctx context.Context, id uuid.UUID, enabled bool) (model.User, error) {
	return store.UpdateUser(ctx, id, model.UserUpdate{NotificationsEnabled: &enabled})
}
