package model

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// PriceScale is the number of fractional digits stored for prices.
	PriceScale           = 5
	maxLineUserIDLength  = 100
	maxProfileTextLength = 255
)

// Limits for decimal(10,5) prices and decimal(8,5) volatility.
var (
	priceLimit      = decimal.New(1, 5)
	volatilityLimit = decimal.New(1, 3)
)

var pairPattern = regexp.MustCompile(`^([A-Z]{3,4})([/_-]?)([A-Z]{3,4})$`)

// NormalizePair returns the canonical "USD/JPY" form of a pair code.
//
// "usd/jpy", "USD_JPY", "USD-JPY" and "USDJPY" are all accepted.
func NormalizePair(value string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))

	if upper == "" {
		return "", apperr.Invalid("pair", "is required")
	}

	match := pairPattern.FindStringSubmatch(upper)

	// Without a separator only the 3+3 form is unambiguous.
	if match == nil || (match[2] == "" && len(upper) != 6) {
		return "", apperr.Invalid("pair", "must be a currency pair such as USD/JPY")
	}

	return match[1] + "/" + match[3], nil
}

// NormalizePrice rounds a price to five places and checks it fits decimal(10,5).
func NormalizePrice(path string, value decimal.NullDecimal) (decimal.NullDecimal, error) {
	if !value.Valid {
		return value, nil
	}

	rounded := value.Decimal.Round(PriceScale)

	if !rounded.IsPositive() {
		return value, apperr.Invalid(path, "must be greater than zero")
	}

	if rounded.GreaterThanOrEqual(priceLimit) {
		return value, apperr.Invalid(path, "must be less than 100000")
	}

	return decimal.NewNullDecimal(rounded), nil
}

// NormalizeVolatility rounds a volatility to five places and checks it fits decimal(8,5).
func NormalizeVolatility(path string, value decimal.NullDecimal) (decimal.NullDecimal, error) {
	if !value.Valid {
		return value, nil
	}

	rounded := value.Decimal.Round(PriceScale)

	if rounded.IsNegative() {
		return value, apperr.Invalid(path, "must not be negative")
	}

	if rounded.GreaterThanOrEqual(volatilityLimit) {
		return value, apperr.Invalid(path, "must be less than 1000")
	}

	return decimal.NewNullDecimal(rounded), nil
}

func normalizeTimestamp(issues *apperr.Issues, path string, value time.Time) time.Time {
	if value.IsZero() {
		issues.Add(path, "is required")
	}

	return value.UTC()
}

// TruncateDay returns midnight UTC of the day t falls on.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type ohlc struct {
	open, high, low, close *decimal.NullDecimal
}

func (prices ohlc) normalize(issues *apperr.Issues) {
	fields := []struct {
		path  string
		value *decimal.NullDecimal
	}{
		{"open_price", prices.open},
		{"high_price", prices.high},
		{"low_price", prices.low},
		{"close_price", prices.close},
	}

	for _, field := range fields {
		normalized, err := NormalizePrice(field.path, *field.value)

		if err != nil {
			issues.Merge(err)
		} else {
			*field.value = normalized
		}
	}

	if prices.high.Valid && prices.low.Valid && prices.high.Decimal.LessThan(prices.low.Decimal) {
		issues.Add("high_price", "must not be less than low_price")
	}
}

// Normalize validates a bar and returns it in storage form.
func (input PriceBarInput) Normalize() (PriceBarInput, error) {
	var issues apperr.Issues
	var err error

	input.Pair, err = NormalizePair(input.Pair)
	issues.Merge(err)
	input.Timestamp = normalizeTimestamp(&issues, "timestamp", input.Timestamp)
	ohlc{&input.Open, &input.High, &input.Low, &input.Close}.normalize(&issues)

	if input.Volume != nil && (*input.Volume < 0 || *input.Volume > math.MaxInt32) {
		issues.Add("volume", "must be between 0 and 2147483647")
	}

	return input, issues.Err()
}

// Normalize validates a daily summary and truncates its date to the UTC day.
func (input DailySummaryInput) Normalize() (DailySummaryInput, error) {
	var issues apperr.Issues
	var err error

	input.Pair, err = NormalizePair(input.Pair)
	issues.Merge(err)
	input.Date = TruncateDay(normalizeTimestamp(&issues, "date", input.Date))
	ohlc{&input.Open, &input.High, &input.Low, &input.Close}.normalize(&issues)

	if input.Volume != nil && *input.Volume < 0 {
		issues.Add("volume", "must not be negative")
	}

	input.Volatility, err = NormalizeVolatility("volatility", input.Volatility)
	issues.Merge(err)

	return input, issues.Err()
}

// Normalize validates an alert before it is recorded.
func (input AlertInput) Normalize() (AlertInput, error) {
	var issues apperr.Issues
	var err error

	if input.UserID == uuid.Nil {
		issues.Add("user_id", "is required")
	}

	input.Pair, err = NormalizePair(input.Pair)
	issues.Merge(err)

	if !input.WaveType.Valid() {
		issues.Add("wave_type", "must be 1, 2 or 3")
	}

	input.Price, err = NormalizePrice("price", input.Price)
	issues.Merge(err)
	input.Timestamp = normalizeTimestamp(&issues, "timestamp", input.Timestamp)

	return input, issues.Err()
}

func checkText(issues *apperr.Issues, path string, value *string, limit int) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)

	if limit > 0 && utf8.RuneCountInString(trimmed) > limit {
		issues.Add(path, "is too long")
	}

	return &trimmed
}

// Normalize validates the profile fields of an update.
func (update UserUpdate) Normalize() (UserUpdate, error) {
	var issues apperr.Issues

	update.normalize(&issues)

	return update, issues.Err()
}

func (update *UserUpdate) normalize(issues *apperr.Issues) {
	update.DisplayName = checkText(issues, "display_name", update.DisplayName, maxProfileTextLength)
	update.Email = checkText(issues, "email", update.Email, maxProfileTextLength)
	update.PictureURL = checkText(issues, "picture_url", update.PictureURL, 0)

	if update.Email != nil && *update.Email != "" && !strings.Contains(*update.Email, "@") {
		issues.Add("email", "must be an email address")
	}
}

// Normalize validates a profile before it is created or synced.
func (profile UserProfile) Normalize() (UserProfile, error) {
	var issues apperr.Issues

	profile.LineUserID = strings.TrimSpace(profile.LineUserID)

	if profile.LineUserID == "" {
		issues.Add("line_user_id", "is required")
	} else if utf8.RuneCountInString(profile.LineUserID) > maxLineUserIDLength {
		issues.Add("line_user_id", "is too long")
	}

	profile.UserUpdate.normalize(&issues)

	return profile, issues.Err()
}

// Validate checks the bounds of a time range.
func (r TimeRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && !r.To.After(r.From) {
		return apperr.Invalid("to", "must be after from")
	}

	return nil
}
