package model

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func price(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

func TestNormalizePair(t *testing.T) {
	tests := []struct {
		value string
		want  string
		ok    bool
	}{
		{"USD/JPY", "USD/JPY", true},
		{"usd/jpy", "USD/JPY", true},
		{" EUR_USD ", "EUR/USD", true},
		{"GBP-JPY", "GBP/JPY", true},
		{"USDJPY", "USD/JPY", true},
		{"USDT/JPY", "USDT/JPY", true},
		{"USDTJPY", "", false},
		{"", "", false},
		{"US/JPY", "", false},
		{"USD/JPY/EUR", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := NormalizePair(tt.value)

			if (err == nil) != tt.ok {
				t.Fatalf("NormalizePair() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("NormalizePair() = %q, want %q", got, tt.want)
			}

			if err != nil && apperr.KindOf(err) != apperr.Validation {
				t.Errorf("error kind = %s", apperr.KindOf(err))
			}
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		value string
		want  string
		ok    bool
	}{
		{"150.12345", "150.12345", true},
		{"150.99999", "150.99999", true},
		{"150.123456", "150.12346", true},
		{"99999.99999", "99999.99999", true},
		{"100000", "", false},
		{"0", "", false},
		{"0.000001", "", false},
		{"-1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := NormalizePrice("price", price(tt.value))

			if (err == nil) != tt.ok {
				t.Fatalf("NormalizePrice() error = %v", err)
			}

			if tt.ok && got.Decimal.String() != tt.want {
				t.Errorf("NormalizePrice() = %s, want %s", got.Decimal, tt.want)
			}
		})
	}

	if got, err := NormalizePrice("price", decimal.NullDecimal{}); err != nil || got.Valid {
		t.Errorf("null price = %v, %v", got, err)
	}
}

func TestPriceBarInputNormalize(t *testing.T) {
	tooMuch := int64(math.MaxInt32) + 1
	input := PriceBarInput{
		Pair:   "usdjpy",
		High:   price("150"),
		Low:    price("151"),
		Volume: &tooMuch,
	}

	_, err := input.Normalize()
	paths := map[string]bool{}

	for _, issue := range apperr.IssuesOf(err) {
		paths[issue.Path] = true
	}

	for _, path := range []string{"timestamp", "high_price", "volume"} {
		if !paths[path] {
			t.Errorf("missing issue for %s in %v", path, err)
		}
	}

	input = PriceBarInput{
		Pair:      "usdjpy",
		Timestamp: time.Date(2025, 1, 15, 19, 0, 0, 0, time.FixedZone("JST", 9*3600)),
		Close:     price("150.1"),
	}
	normalized, err := input.Normalize()

	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if normalized.Pair != "USD/JPY" || normalized.Timestamp.Location() != time.UTC || normalized.Timestamp.Hour() != 10 {
		t.Errorf("Normalize() = %+v", normalized)
	}
}

func TestDailySummaryInputTruncatesDate(t *testing.T) {
	input := DailySummaryInput{
		Pair:       "EUR/USD",
		Date:       time.Date(2025, 1, 15, 23, 59, 0, 0, time.UTC),
		Volatility: price("-0.1"),
	}

	if _, err := input.Normalize(); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("negative volatility was accepted: %v", err)
	}

	input.Volatility = price("0.25")
	normalized, err := input.Normalize()

	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if !normalized.Date.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %s", normalized.Date)
	}
}

func TestAlertInputNormalize(t *testing.T) {
	input := AlertInput{
		UserID:    uuid.New(),
		Pair:      "USD/JPY",
		WaveType:  4,
		Timestamp: time.Now(),
	}

	_, err := input.Normalize()
	issues := apperr.IssuesOf(err)

	if len(issues) != 1 || issues[0].Path != "wave_type" {
		t.Fatalf("issues = %v", issues)
	}

	input.WaveType = 3
	input.UserID = uuid.Nil

	if _, err := input.Normalize(); err == nil {
		t.Fatal("nil user_id was accepted")
	}
}

func TestUserProfileNormalize(t *testing.T) {
	long := strings.Repeat("x", 256)
	badEmail := "not-an-email"
	profile := UserProfile{
		LineUserID: strings.Repeat("U", 101),
		UserUpdate: UserUpdate{DisplayName: &long, Email: &badEmail},
	}

	_, err := profile.Normalize()

	if got := len(apperr.IssuesOf(err)); got != 3 {
		t.Fatalf("got %d issues, want 3: %v", got, err)
	}

	if _, err := (UserProfile{LineUserID: "  "}).Normalize(); err == nil {
		t.Fatal("blank line_user_id was accepted")
	}
}

func TestTimeRange(t *testing.T) {
	from := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	r := TimeRange{From: from, To: from.Add(time.Hour)}

	if !r.Contains(from) || r.Contains(from.Add(time.Hour)) || r.Contains(from.Add(-time.Nanosecond)) {
		t.Error("range is not half open")
	}

	if !(TimeRange{}).Contains(from) {
		t.Error("an empty range should contain everything")
	}

	if err := (TimeRange{From: from, To: from}).Validate(); err == nil {
		t.Error("an empty interval was accepted")
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from, to AlertStatus
		kind     apperr.Kind
		ok       bool
	}{
		{StatusSent, StatusSent, 0, true},
		{StatusSent, StatusDelivered, 0, true},
		{StatusDelivered, StatusRead, 0, true},
		{StatusRead, StatusRead, 0, true},
		{StatusSent, StatusRead, apperr.Conflict, false},
		{StatusDelivered, StatusSent, apperr.Conflict, false},
		{StatusRead, StatusDelivered, apperr.Conflict, false},
		{StatusSent, "archived", apperr.Validation, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := tt.from.CheckTransition(tt.to)

			if (err == nil) != tt.ok {
				t.Fatalf("CheckTransition() error = %v", err)
			}

			if !tt.ok && apperr.KindOf(err) != tt.kind {
				t.Errorf("kind = %s, want %s", apperr.KindOf(err), tt.kind)
			}
		})
	}
}
