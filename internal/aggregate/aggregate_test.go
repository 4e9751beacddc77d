package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store/memory"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func price(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

func volume(value int32) *int32 {
	return &value
}

func TestRollup(t *testing.T) {
	day := time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)
	bars := []model.PriceBar{
		{Open: decimal.NullDecimal{}, High: price("150.5"), Low: price("150.0"), Close: price("150.2"), Volume: volume(10)},
		{Open: price("150.2"), High: price("151.0"), Low: price("149.5"), Close: price("150.8"), Volume: volume(5)},
		{Open: price("150.8"), High: price("150.9"), Low: price("150.1"), Close: decimal.NullDecimal{}},
	}

	summary, ok := Rollup("USD/JPY", day, bars)

	if !ok {
		t.Fatal("Rollup() returned no summary")
	}

	if !summary.Date.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %s", summary.Date)
	}

	checks := []struct {
		name string
		got  decimal.NullDecimal
		want string
	}{
		{"open", summary.Open, "150.2"},
		{"high", summary.High, "151"},
		{"low", summary.Low, "149.5"},
		{"close", summary.Close, "150.8"},
		{"volatility", summary.Volatility, "1.00334"},
	}

	for _, check := range checks {
		if !check.got.Valid || !check.got.Decimal.Equal(decimal.RequireFromString(check.want)) {
			t.Errorf("%s = %v, want %s", check.name, check.got, check.want)
		}
	}

	if summary.Volume == nil || *summary.Volume != 15 {
		t.Errorf("Volume = %v, want 15", summary.Volume)
	}
}

func TestRollupWithoutBars(t *testing.T) {
	if _, ok := Rollup("USD/JPY", time.Now(), nil); ok {
		t.Fatal("Rollup() of no bars returned a summary")
	}
}

func TestVolatilityNeedsPositiveLow(t *testing.T) {
	if Volatility(price("1"), decimal.NullDecimal{}).Valid {
		t.Error("Volatility() without a low should be null")
	}
}

func TestRunDayReplacesSummaries(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	aggregator := New(st, zap.NewNop())
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	for i, closing := range []string{"150.1", "150.3"} {
		_, err := st.AppendBar(ctx, model.PriceBarInput{
			Pair:      "USD/JPY",
			Timestamp: day.Add(time.Duration(i) * time.Hour),
			Open:      price("150"),
			High:      price("150.5"),
			Low:       price("149.9"),
			Close:     price(closing),
		})

		if err != nil {
			t.Fatalf("AppendBar() error = %v", err)
		}
	}

	// A bar on the next day must not be included.
	if _, err := st.AppendBar(ctx, model.PriceBarInput{
		Pair:      "USD/JPY",
		Timestamp: day.AddDate(0, 0, 1),
		Close:     price("999"),
	}); err != nil {
		t.Fatalf("AppendBar() error = %v", err)
	}

	for run := 0; run < 2; run++ {
		summaries, err := aggregator.RunDay(ctx, day.Add(12*time.Hour))

		if err != nil {
			t.Fatalf("RunDay() error = %v", err)
		}

		if len(summaries) != 1 || !summaries[0].Close.Decimal.Equal(decimal.RequireFromString("150.3")) {
			t.Fatalf("RunDay() = %+v", summaries)
		}
	}

	stored, err := st.ListDailySummaries(ctx, "USD/JPY", model.TimeRange{})

	if err != nil {
		t.Fatalf("ListDailySummaries() error = %v", err)
	}

	if len(stored) != 1 {
		t.Fatalf("got %d summaries, want 1", len(stored))
	}
}

func TestRunDayStoresOutOfRangeVolatilityAsNull(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	aggregator := New(st, zap.NewNop())
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	bars := []model.PriceBarInput{
		{Pair: "EUR/JPY", Timestamp: day.Add(time.Hour), Open: price("159"), High: price("160"), Low: price("1.0"), Close: price("159.5")},
		{Pair: "USD/JPY", Timestamp: day.Add(time.Hour), Open: price("150.5"), High: price("151"), Low: price("150"), Close: price("150.7")},
	}

	for _, bar := range bars {
		if _, err := st.AppendBar(ctx, bar); err != nil {
			t.Fatalf("AppendBar() error = %v", err)
		}
	}

	summaries, err := aggregator.RunDay(ctx, day)

	if err != nil {
		t.Fatalf("RunDay() error = %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("RunDay() stored %d summaries, want 2", len(summaries))
	}

	for _, summary := range summaries {
		switch summary.Pair {
		case "EUR/JPY":
			if summary.Volatility.Valid {
				t.Errorf("EUR/JPY volatility = %s, want null", summary.Volatility.Decimal)
			}

			if !summary.Low.Decimal.Equal(decimal.RequireFromString("1")) {
				t.Errorf("EUR/JPY low = %s", summary.Low.Decimal)
			}
		case "USD/JPY":
			if !summary.Volatility.Valid || !summary.Volatility.Decimal.Equal(decimal.RequireFromString("0.66667")) {
				t.Errorf("USD/JPY volatility = %+v, want 0.66667", summary.Volatility)
			}
		default:
			t.Errorf("unexpected pair %s", summary.Pair)
		}
	}

	stored, err := st.ListDailySummaries(ctx, "USD/JPY", model.TimeRange{})

	if err != nil || len(stored) != 1 {
		t.Fatalf("ListDailySummaries() = %d summaries, error %v", len(stored), err)
	}
}
