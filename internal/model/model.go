package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a user registered through their LINE identity
type User struct {
	ID                   uuid.UUID `json:"id"`
	LineUserID           string    `json:"line_user_id"`
	DisplayName          *string   `json:"display_name"`
	PictureURL           *string   `json:"picture_url"`
	Email                *string   `json:"email"`
	NotificationsEnabled bool      `json:"line_notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// UserUpdate holds the mutable profile fields of a user.
//
// A nil field leaves the stored value alone.
type UserUpdate struct {
	DisplayName          *string `json:"display_name"`
	PictureURL           *string `json:"picture_url"`
	Email                *string `json:"email"`
	NotificationsEnabled *bool   `json:"line_notifications_enabled"`
}

// UserProfile is the input for creating or syncing a user
type UserProfile struct {
	LineUserID string `json:"line_user_id"`
	UserUpdate
}

// PriceBar represents one OHLCV bar for a currency pair
type PriceBar struct {
	ID        int64               `json:"id"`
	Pair      string              `json:"pair"`
	Timestamp time.Time           `json:"timestamp"`
	Open      decimal.NullDecimal `json:"open_price"`
	High      decimal.NullDecimal `json:"high_price"`
	Low       decimal.NullDecimal `json:"low_price"`
	Close     decimal.NullDecimal `json:"close_price"`
	Volume    *int32              `json:"volume"`
	CreatedAt time.Time           `json:"created_at"`
}

// PriceBarInput is a bar to append to the price store
type PriceBarInput struct {
	Pair      string              `json:"pair"`
	Timestamp time.Time           `json:"timestamp"`
	Open      decimal.NullDecimal `json:"open_price"`
	High      decimal.NullDecimal `json:"high_price"`
	Low       decimal.NullDecimal `json:"low_price"`
	Close     decimal.NullDecimal `json:"close_price"`
	Volume    *int64              `json:"volume"`
}

// DailySummary is the rollup of one pair's bars for one UTC day
type DailySummary struct {
	ID         int64               `json:"id"`
	Pair       string              `json:"pair"`
	Date       time.Time           `json:"date"`
	Open       decimal.NullDecimal `json:"open_price"`
	High       decimal.NullDecimal `json:"high_price"`
	Low        decimal.NullDecimal `json:"low_price"`
	Close      decimal.NullDecimal `json:"close_price"`
	Volume     *int64              `json:"volume"`
	Volatility decimal.NullDecimal `json:"volatility"`
	CreatedAt  time.Time           `json:"created_at"`
}

// DailySummaryInput replaces the summary row for a pair and day
type DailySummaryInput struct {
	Pair       string              `json:"pair"`
	Date       time.Time           `json:"date"`
	Open       decimal.NullDecimal `json:"open_price"`
	High       decimal.NullDecimal `json:"high_price"`
	Low        decimal.NullDecimal `json:"low_price"`
	Close      decimal.NullDecimal `json:"close_price"`
	Volume     *int64              `json:"volume"`
	Volatility decimal.NullDecimal `json:"volatility"`
}

// WaveAlert is a record of an alert sent to a user for a detected wave
type WaveAlert struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	Pair      string              `json:"pair"`
	WaveType  WaveType            `json:"wave_type"`
	Price     decimal.NullDecimal `json:"price"`
	Timestamp time.Time           `json:"timestamp"`
	SentAt    time.Time           `json:"sent_at"`
	Status    AlertStatus         `json:"status"`
}

// AlertInput is a wave alert to record
type AlertInput struct {
	UserID    uuid.UUID           `json:"user_id"`
	Pair      string              `json:"pair"`
	WaveType  WaveType            `json:"wave_type"`
	Price     decimal.NullDecimal `json:"price"`
	Timestamp time.Time           `json:"timestamp"`
}

// AlertFilter narrows the alerts listed for a user.
type AlertFilter struct {
	Pair  string
	Since time.Time
}

// TimeRange is the half-open interval [From, To). A zero bound is unbounded.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}

	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}

	return true
}
