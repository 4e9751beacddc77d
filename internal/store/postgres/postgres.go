// Package postgres implements the fxwave store on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/database"
	"github.com/dense-analysis/fxwave/internal/model"
)

// Store runs every operation on a connection checked out of the pool for
// the duration of the call.
type Store struct {
	conn *database.Conn
}

// New creates a Store using an open pool.
func New(conn *database.Conn) *Store {
	return &Store{conn: conn}
}

// Ping checks that the database can be reached.
func (store *Store) Ping(ctx context.Context) error {
	return store.conn.Ping(ctx)
}

// Close closes the pool.
func (store *Store) Close() {
	store.conn.Close()
}

// notFound replaces the message of a NotFound error with a useful one.
func notFound(err error, format string, args ...any) error {
	if apperr.KindOf(err) == apperr.NotFound {
		return apperr.Wrap(apperr.NotFound, fmt.Sprintf(format, args...), err)
	}

	return err
}

// whereBuilder accumulates SQL conditions and their positional arguments.
type whereBuilder struct {
	conditions []string
	arguments  []any
}

func (where *whereBuilder) add(condition string, argument any) {
	where.arguments = append(where.arguments, argument)
	where.conditions = append(
		where.conditions,
		strings.ReplaceAll(condition, "?", fmt.Sprintf("$%d", len(where.arguments))),
	)
}

func (where *whereBuilder) timeRange(column string, timeRange model.TimeRange) {
	if !timeRange.From.IsZero() {
		where.add(column+" >= ?", timeRange.From)
	}

	if !timeRange.To.IsZero() {
		where.add(column+" < ?", timeRange.To)
	}
}

func (where *whereBuilder) String() string {
	if len(where.conditions) == 0 {
		return ""
	}

	return " where " + strings.Join(where.conditions, " and ")
}
