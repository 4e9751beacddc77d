package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/dense-analysis/fxwave/internal/store/memory"
	"github.com/dense-analysis/fxwave/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.New()
	})
}

func TestAlertSinceFilterUsesSentAt(t *testing.T) {
	ctx := context.Background()
	now := storetest.Day
	st := memory.NewWithClock(func() time.Time { return now })
	user := storetest.NewUser(t, st, "U1")

	for _, pair := range []string{"USD/JPY", "EUR/USD", "USD/JPY"} {
		now = now.Add(time.Hour)

		// The bar timestamp is fixed so only sent_at can separate the alerts.
		if _, err := st.RecordAlert(ctx, model.AlertInput{
			UserID:    user.ID,
			Pair:      pair,
			WaveType:  3,
			Timestamp: storetest.Day,
		}); err != nil {
			t.Fatalf("RecordAlert() error = %v", err)
		}
	}

	alertList, err := st.ListAlertsForUser(ctx, user.ID, model.AlertFilter{Since: storetest.Day.Add(2 * time.Hour)})

	if err != nil || len(alertList) != 2 {
		t.Fatalf("since filter = %d alerts, %v", len(alertList), err)
	}

	if !alertList[0].SentAt.After(alertList[1].SentAt) {
		t.Error("alerts are not newest first")
	}
}

func TestTimestampsAreStrictlyIncreasing(t *testing.T) {
	fixed := storetest.Day
	st := memory.NewWithClock(func() time.Time { return fixed })
	name := "Taro"

	created, _, err := st.UpsertUser(context.Background(), model.UserProfile{LineUserID: "U1"})

	if err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	updated, err := st.UpdateUser(context.Background(), created.ID, model.UserUpdate{DisplayName: &name})

	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	if !updated.UpdatedAt.After(created.CreatedAt) {
		t.Errorf("updated_at %s is not after created_at %s with a stopped clock", updated.UpdatedAt, created.CreatedAt)
	}
}
