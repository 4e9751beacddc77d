package model

import (
	"fmt"

	"github.com/dense-analysis/fxwave/internal/apperr"
)

// WaveType is the wave of the pattern that was detected.
type WaveType int

// Valid reports whether the wave type is 1, 2 or 3.
func (w WaveType) Valid() bool {
	return w >= 1 && w <= 3
}

// AlertStatus is the delivery status of a wave alert.
type AlertStatus string

const (
	StatusSent      AlertStatus = "sent"
	StatusDelivered AlertStatus = "delivered"
	StatusRead      AlertStatus = "read"
)

var statusOrder = []AlertStatus{StatusSent, StatusDelivered, StatusRead}

func (s AlertStatus) rank() int {
	for i, status := range statusOrder {
		if status == s {
			return i
		}
	}

	return -1
}

// Valid reports whether s is a known status.
func (s AlertStatus) Valid() bool {
	return s.rank() >= 0
}

// ParseAlertStatus checks a status string from a caller.
func ParseAlertStatus(value string) (AlertStatus, error) {
	status := AlertStatus(value)

	if !status.Valid() {
		return "", apperr.Invalid("status", `must be one of "sent", "delivered", "read"`)
	}

	return status, nil
}

// CheckTransition returns a Conflict error unless next is the current status
// or the one directly after it.
func (s AlertStatus) CheckTransition(next AlertStatus) error {
	from, to := s.rank(), next.rank()

	if to < 0 {
		return apperr.Invalid("status", fmt.Sprintf("unknown status %q", next))
	}

	if from < 0 || (to != from && to != from+1) {
		return apperr.Conflictf("cannot change alert status from %q to %q", s, next)
	}

	return nil
}
