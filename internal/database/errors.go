package database

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// SQLSTATE codes the stores care about.
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
	NumericOutOfRange   = "22003"
)

// Translate converts a driver error into an apperr.Error with the matching kind.
//
// The original error stays reachable through errors.Is and errors.As.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error

	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.Wrap(apperr.NotFound, "no rows", err)
	}

	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		return translatePgError(pgErr, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return apperr.Wrap(apperr.Unavailable, "storage deadline exceeded", err)
	}

	var netErr net.Error

	if errors.As(err, &netErr) || isConnectionFailure(err) {
		return apperr.Wrap(apperr.Unavailable, "storage unreachable", err)
	}

	return err
}

func translatePgError(pgErr *pgconn.PgError, err error) error {
	switch {
	case pgErr.Code == UniqueViolation:
		return apperr.Wrap(apperr.Conflict, "already exists", err)
	case pgErr.Code == ForeignKeyViolation:
		return apperr.Wrap(apperr.NotFound, "referenced row does not exist", err)
	case pgErr.Code == CheckViolation, pgErr.Code == NumericOutOfRange:
		return apperr.Wrap(apperr.Validation, "value rejected by storage", err)
	// Class 08 is connection exceptions, 57P0x is operator intervention.
	case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P0"), pgErr.Code == "53300":
		return apperr.Wrap(apperr.Unavailable, "storage unavailable", err)
	}

	return err
}

// pgconn does not export its connect error type in this version.
func isConnectionFailure(err error) bool {
	message := err.Error()

	return strings.Contains(message, "failed to connect") ||
		strings.Contains(message, "closed pool") ||
		strings.Contains(message, "conn closed")
}
