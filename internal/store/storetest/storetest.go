// Package storetest checks that a store.Store backend behaves the way the API
// expects. Each backend's tests call Run with a function returning an empty
// store.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Day is the UTC day the checks write their data on.
var Day = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

// Price parses a decimal price for a bar, alert or summary.
func Price(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

// NewUser creates a user with only a LINE ID.
func NewUser(t *testing.T, st store.Store, lineUserID string) model.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), model.UserProfile{LineUserID: lineUserID})

	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	return user
}

// Run runs every check against stores made by open. open is called once per
// check and must return a store with no data in it.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	checks := []struct {
		name  string
		check func(t *testing.T, st store.Store)
	}{
		{"CreateUserConflict", createUserConflict},
		{"UpsertUserKeepsMissingFields", upsertUserKeepsMissingFields},
		{"ConcurrentUpsertUser", concurrentUpsertUser},
		{"UserLookups", userLookups},
		{"QueryBarsRangeAndOrder", queryBarsRangeAndOrder},
		{"PriceDecimalsRoundTrip", priceDecimalsRoundTrip},
		{"PairsAndBarsAfter", pairsAndBarsAfter},
		{"RecordAlert", recordAlert},
		{"AlertListFilters", alertListFilters},
		{"UpdateStatus", updateStatus},
		{"UpsertDailySummary", upsertDailySummary},
		{"SummaryPairs", summaryPairs},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			c.check(t, open(t))
		})
	}
}

func createUserConflict(t *testing.T, st store.Store) {
	NewUser(t, st, "U1")

	_, err := st.CreateUser(context.Background(), model.UserProfile{LineUserID: "U1"})

	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want conflict", err)
	}
}

func upsertUserKeepsMissingFields(t *testing.T, st store.Store) {
	ctx := context.Background()
	name := "Taro"
	created, isNew, err := st.UpsertUser(ctx, model.UserProfile{
		LineUserID: "U1",
		UserUpdate: model.UserUpdate{DisplayName: &name},
	})

	if err != nil || !isNew {
		t.Fatalf("UpsertUser() = %v, %v", isNew, err)
	}

	if !created.NotificationsEnabled {
		t.Error("notifications are off for a new user")
	}

	email := "taro@example.com"
	updated, isNew, err := st.UpsertUser(ctx, model.UserProfile{
		LineUserID: "U1",
		UserUpdate: model.UserUpdate{Email: &email},
	})

	if err != nil || isNew {
		t.Fatalf("UpsertUser() = %v, %v", isNew, err)
	}

	if updated.ID != created.ID || updated.DisplayName == nil || *updated.DisplayName != "Taro" {
		t.Errorf("UpsertUser() = %+v", updated)
	}

	if updated.Email == nil || *updated.Email != email {
		t.Errorf("email = %v", updated.Email)
	}

	if !updated.CreatedAt.Equal(created.CreatedAt) || !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("created_at %s, updated_at %s", updated.CreatedAt, updated.UpdatedAt)
	}
}

func concurrentUpsertUser(t *testing.T, st store.Store) {
	ctx := context.Background()
	results := make(chan bool, 8)

	var wg sync.WaitGroup

	for i := 0; i < cap(results); i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, created, err := st.UpsertUser(ctx, model.UserProfile{LineUserID: "U1"})

			if err != nil {
				t.Errorf("UpsertUser() error = %v", err)
			}

			results <- created
		}()
	}

	wg.Wait()
	close(results)

	inserts := 0

	for created := range results {
		if created {
			inserts++
		}
	}

	if inserts != 1 {
		t.Errorf("%d concurrent upserts reported an insert, want 1", inserts)
	}
}

func userLookups(t *testing.T, st store.Store) {
	ctx := context.Background()
	user := NewUser(t, st, "U1")

	found, err := st.GetUserByLineID(ctx, "U1")

	if err != nil || found.ID != user.ID {
		t.Fatalf("GetUserByLineID() = %+v, %v", found, err)
	}

	if _, err := st.GetUser(ctx, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetUser() unknown error = %v", err)
	}

	muted, err := st.SetNotificationPreference(ctx, user.ID, false)

	if err != nil || muted.NotificationsEnabled {
		t.Fatalf("SetNotificationPreference() = %+v, %v", muted, err)
	}

	picture := "https://example.com/taro.png"
	updated, err := st.UpdateUser(ctx, user.ID, model.UserUpdate{PictureURL: &picture})

	if err != nil || updated.PictureURL == nil || *updated.PictureURL != picture || updated.NotificationsEnabled {
		t.Errorf("UpdateUser() = %+v, %v", updated, err)
	}

	if _, err := st.UpdateUser(ctx, uuid.New(), model.UserUpdate{PictureURL: &picture}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateUser() unknown error = %v", err)
	}
}

func queryBarsRangeAndOrder(t *testing.T, st store.Store) {
	ctx := context.Background()

	// Inserted out of order, with a duplicate timestamp.
	for _, hour := range []int{3, 1, 2, 2, 5} {
		if _, err := st.AppendBar(ctx, model.PriceBarInput{
			Pair:      "USD/JPY",
			Timestamp: Day.Add(time.Duration(hour) * time.Hour),
			Close:     Price("150.1"),
		}); err != nil {
			t.Fatalf("AppendBar() error = %v", err)
		}
	}

	barList, err := st.QueryBars(ctx, "usd_jpy", model.TimeRange{
		From: Day.Add(2 * time.Hour),
		To:   Day.Add(5 * time.Hour),
	})

	if err != nil {
		t.Fatalf("QueryBars() error = %v", err)
	}

	if len(barList) != 3 {
		t.Fatalf("got %d bars, want 3", len(barList))
	}

	for i := 1; i < len(barList); i++ {
		previous, current := barList[i-1], barList[i]

		if current.Timestamp.Before(previous.Timestamp) ||
			(current.Timestamp.Equal(previous.Timestamp) && current.ID < previous.ID) {
			t.Errorf("bars out of order at %d: %+v", i, barList)
		}
	}

	latest, err := st.LatestBars(ctx, "USD/JPY", 1)

	if err != nil || len(latest) != 1 || !latest[0].Timestamp.Equal(Day.Add(5*time.Hour)) {
		t.Errorf("LatestBars() = %+v, %v", latest, err)
	}

	if _, err := st.QueryBars(ctx, "USD/JPY", model.TimeRange{From: Day, To: Day}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty range error = %v", err)
	}
}

func priceDecimalsRoundTrip(t *testing.T, st store.Store) {
	ctx := context.Background()

	for _, value := range []string{"150.12345", "150.99999", "0.00001", "99999.99999"} {
		bar, err := st.AppendBar(ctx, model.PriceBarInput{Pair: "USD/JPY", Timestamp: Day, Close: Price(value)})

		if err != nil {
			t.Fatalf("AppendBar() error = %v", err)
		}

		if !bar.Close.Decimal.Equal(decimal.RequireFromString(value)) {
			t.Errorf("close = %s, want %s", bar.Close.Decimal, value)
		}
	}

	barList, err := st.QueryBars(ctx, "USD/JPY", model.TimeRange{})

	if err != nil || len(barList) != 4 {
		t.Fatalf("QueryBars() = %d bars, %v", len(barList), err)
	}

	if !barList[1].Close.Decimal.Equal(decimal.RequireFromString("150.99999")) {
		t.Errorf("stored close = %s", barList[1].Close.Decimal)
	}

	if barList[0].Open.Valid {
		t.Errorf("missing open_price was stored as %s", barList[0].Open.Decimal)
	}
}

func pairsAndBarsAfter(t *testing.T, st store.Store) {
	ctx := context.Background()

	for i, pair := range []string{"USD/JPY", "EUR/USD", "USD/JPY"} {
		if _, err := st.AppendBar(ctx, model.PriceBarInput{
			Pair:      pair,
			Timestamp: Day.Add(time.Duration(i) * time.Hour),
			Close:     Price("1.1"),
		}); err != nil {
			t.Fatalf("AppendBar() error = %v", err)
		}
	}

	pairs, err := st.Pairs(ctx, model.TimeRange{})

	if err != nil || len(pairs) != 2 || pairs[0] != "EUR/USD" || pairs[1] != "USD/JPY" {
		t.Fatalf("Pairs() = %v, %v", pairs, err)
	}

	first, err := st.BarsAfter(ctx, 0, 2)

	if err != nil || len(first) != 2 || first[0].ID >= first[1].ID {
		t.Fatalf("BarsAfter(0) = %+v, %v", first, err)
	}

	rest, err := st.BarsAfter(ctx, first[1].ID, 2)

	if err != nil || len(rest) != 1 || rest[0].ID <= first[1].ID {
		t.Errorf("BarsAfter(%d) = %+v, %v", first[1].ID, rest, err)
	}
}

func recordAlert(t *testing.T, st store.Store) {
	ctx := context.Background()
	user := NewUser(t, st, "U1")
	input := model.AlertInput{
		UserID:    user.ID,
		Pair:      "USD/JPY",
		WaveType:  4,
		Price:     Price("150.12345"),
		Timestamp: Day,
	}

	if _, err := st.RecordAlert(ctx, input); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("wave_type 4 error = %v", err)
	}

	input.WaveType = 3
	input.UserID = uuid.New()

	if _, err := st.RecordAlert(ctx, input); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown user error = %v", err)
	}

	input.UserID = user.ID
	alert, err := st.RecordAlert(ctx, input)

	if err != nil {
		t.Fatalf("RecordAlert() error = %v", err)
	}

	if !alert.Price.Decimal.Equal(decimal.RequireFromString("150.12345")) {
		t.Errorf("price = %s", alert.Price.Decimal)
	}

	alertList, err := st.ListAlertsForUser(ctx, user.ID, model.AlertFilter{})

	if err != nil {
		t.Fatalf("ListAlertsForUser() error = %v", err)
	}

	if len(alertList) != 1 || alertList[0].ID != alert.ID || alertList[0].Status != model.StatusSent {
		t.Fatalf("ListAlertsForUser() = %+v", alertList)
	}

	if _, err := st.ListAlertsForUser(ctx, uuid.New(), model.AlertFilter{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown user list error = %v", err)
	}
}

func alertListFilters(t *testing.T, st store.Store) {
	ctx := context.Background()
	user := NewUser(t, st, "U1")
	recorded := make([]model.WaveAlert, 0, 3)

	for i, pair := range []string{"USD/JPY", "EUR/USD", "USD/JPY"} {
		alert, err := st.RecordAlert(ctx, model.AlertInput{
			UserID:    user.ID,
			Pair:      pair,
			WaveType:  3,
			Timestamp: Day.Add(time.Duration(i) * time.Hour),
		})

		if err != nil {
			t.Fatalf("RecordAlert() error = %v", err)
		}

		recorded = append(recorded, alert)
	}

	alertList, err := st.ListAlertsForUser(ctx, user.ID, model.AlertFilter{Pair: "usdjpy"})

	if err != nil || len(alertList) != 2 {
		t.Fatalf("pair filter = %d alerts, %v", len(alertList), err)
	}

	if alertList[0].SentAt.Before(alertList[1].SentAt) {
		t.Error("alerts are not newest first")
	}

	alertList, err = st.ListAlertsForUser(ctx, user.ID, model.AlertFilter{Since: recorded[2].SentAt})

	if err != nil || len(alertList) == 0 || len(alertList) > 3 {
		t.Fatalf("since filter = %d alerts, %v", len(alertList), err)
	}

	for _, alert := range alertList {
		if alert.SentAt.Before(recorded[2].SentAt) {
			t.Errorf("alert sent at %s is before the since filter", alert.SentAt)
		}
	}
}

func updateStatus(t *testing.T, st store.Store) {
	ctx := context.Background()
	user := NewUser(t, st, "U1")
	alert, err := st.RecordAlert(ctx, model.AlertInput{UserID: user.ID, Pair: "USD/JPY", WaveType: 1, Timestamp: Day})

	if err != nil {
		t.Fatalf("RecordAlert() error = %v", err)
	}

	steps := []struct {
		status model.AlertStatus
		want   error
	}{
		{model.StatusRead, apperr.ErrConflict},
		{model.StatusSent, nil},
		{model.StatusDelivered, nil},
		{model.StatusDelivered, nil},
		{model.StatusSent, apperr.ErrConflict},
		{"archived", apperr.ErrValidation},
		{model.StatusRead, nil},
	}

	for _, step := range steps {
		_, err := st.UpdateStatus(ctx, alert.ID, step.status)

		if step.want == nil && err != nil || step.want != nil && !errors.Is(err, step.want) {
			t.Errorf("UpdateStatus(%q) error = %v, want %v", step.status, err, step.want)
		}
	}

	stored, err := st.GetAlert(ctx, alert.ID)

	if err != nil || stored.Status != model.StatusRead {
		t.Errorf("GetAlert() = %q, %v", stored.Status, err)
	}

	if _, err := st.UpdateStatus(ctx, uuid.New(), model.StatusDelivered); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown alert error = %v", err)
	}
}

func upsertDailySummary(t *testing.T, st store.Store) {
	ctx := context.Background()

	first, err := st.UpsertDailySummary(ctx, model.DailySummaryInput{
		Pair:       "USD/JPY",
		Date:       Day.Add(3 * time.Hour),
		Close:      Price("150.1"),
		Volatility: Price("999.99999"),
	})

	if err != nil {
		t.Fatalf("UpsertDailySummary() error = %v", err)
	}

	second, err := st.UpsertDailySummary(ctx, model.DailySummaryInput{Pair: "USD/JPY", Date: Day.Add(20 * time.Hour), Close: Price("150.2")})

	if err != nil {
		t.Fatalf("UpsertDailySummary() error = %v", err)
	}

	if first.ID != second.ID || !second.Date.Equal(Day) {
		t.Errorf("second upsert = %+v", second)
	}

	summaryList, err := st.ListDailySummaries(ctx, "USD/JPY", model.TimeRange{})

	if err != nil || len(summaryList) != 1 {
		t.Fatalf("ListDailySummaries() = %+v, %v", summaryList, err)
	}

	if !summaryList[0].Close.Decimal.Equal(decimal.RequireFromString("150.2")) || summaryList[0].Volatility.Valid {
		t.Errorf("stored summary = %+v", summaryList[0])
	}

	if _, err := st.UpsertDailySummary(ctx, model.DailySummaryInput{
		Pair:       "USD/JPY",
		Date:       Day,
		Volatility: Price("1000"),
	}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("volatility 1000 error = %v", err)
	}
}

func summaryPairs(t *testing.T, st store.Store) {
	ctx := context.Background()

	for i, pair := range []string{"USD/JPY", "EUR/USD", "USD/JPY"} {
		if _, err := st.UpsertDailySummary(ctx, model.DailySummaryInput{Pair: pair, Date: Day.AddDate(0, 0, i)}); err != nil {
			t.Fatalf("UpsertDailySummary() error = %v", err)
		}
	}

	pairs, err := st.SummaryPairs(ctx, model.TimeRange{})

	if err != nil || len(pairs) != 2 || pairs[0] != "EUR/USD" || pairs[1] != "USD/JPY" {
		t.Fatalf("SummaryPairs() = %v, %v", pairs, err)
	}

	pairs, err = st.SummaryPairs(ctx, model.TimeRange{From: Day.AddDate(0, 0, 2)})

	if err != nil || len(pairs) != 1 || pairs[0] != "USD/JPY" {
		t.Errorf("SummaryPairs(from day 3) = %v, %v", pairs, err)
	}
}
