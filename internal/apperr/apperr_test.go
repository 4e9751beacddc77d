package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	driverErr := errors.New("duplicate key value violates unique constraint")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain", errors.New("boom"), Internal},
		{"invalid", Invalid("pair", "is required"), Validation},
		{"wrapped", fmt.Errorf("upsert: %w", Wrap(Conflict, "already exists", driverErr)), Conflict},
		{"not found", NotFoundf("user %d not found", 1), NotFound},
		{"unavailable", Wrap(Unavailable, "down", nil), Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	driverErr := errors.New("connection refused")
	err := fmt.Errorf("ping: %w", Wrap(Unavailable, "storage unreachable", driverErr))

	if !errors.Is(err, ErrUnavailable) {
		t.Error("errors.Is(err, ErrUnavailable) = false")
	}

	if errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = true")
	}

	if !errors.Is(err, driverErr) {
		t.Error("the driver error is not reachable")
	}
}

func TestMessageOfHidesDriverDetail(t *testing.T) {
	err := Wrap(NotFound, "user 42 not found", errors.New("no rows in result set"))

	if got := MessageOf(err); got != "user 42 not found" {
		t.Errorf("MessageOf() = %q", got)
	}

	if got := MessageOf(errors.New("boom")); got != "" {
		t.Errorf("MessageOf(plain) = %q, want empty", got)
	}
}

func TestIssuesCollects(t *testing.T) {
	var issues Issues

	if issues.Err() != nil {
		t.Fatal("empty Issues produced an error")
	}

	issues.Add("pair", "is required")

	if other := issues.Merge(Invalid("wave_type", "must be 1, 2 or 3")); other != nil {
		t.Fatalf("Merge() returned %v", other)
	}

	if other := issues.Merge(errors.New("boom")); other == nil {
		t.Fatal("Merge() swallowed a non-validation error")
	}

	err := issues.Err()

	if KindOf(err) != Validation || len(IssuesOf(err)) != 2 {
		t.Fatalf("Err() = %v with %d issues", err, len(IssuesOf(err)))
	}

	if err.Error() != "pair: is required; wave_type: must be 1, 2 or 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}
