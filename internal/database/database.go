// Package database wraps the PostgreSQL implementation used for fxwave.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Conn is a pool of connections. Each call checks a connection out and
// returns it when the call completes.
type Conn struct {
	pool *pgxpool.Pool
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

var ErrNoRows = pgx.ErrNoRows

// Options control how the pool is opened.
type Options struct {
	MaxConns        int32
	ConnectTimeout  time.Duration
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultOptions returns the pool settings used by the server.
func DefaultOptions() Options {
	return Options{
		MaxConns:        20,
		ConnectTimeout:  5 * time.Second,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	}
}

// Connect opens a pool for a postgres:// URL and checks it can be reached.
func Connect(ctx context.Context, databaseURL string, options Options) (*Conn, error) {
	config, err := pgxpool.ParseConfig(databaseURL)

	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	if options.MaxConns > 0 {
		config.MaxConns = options.MaxConns
	}

	if options.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = options.ConnectTimeout
	}

	config.MaxConnLifetime = options.MaxConnLifetime
	config.MaxConnIdleTime = options.MaxConnIdleTime
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.ConnectConfig(ctx, config)

	if err != nil {
		return nil, Translate(err)
	}

	conn := &Conn{pool: pool}

	if err := conn.Ping(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return conn, nil
}

// Close closes all connections in the pool.
func (conn *Conn) Close() {
	conn.pool.Close()
}

// Ping checks that a connection can be acquired and used.
func (conn *Conn) Ping(ctx context.Context) error {
	return Translate(conn.pool.Ping(ctx))
}

// Exec executes a database query.
func (conn *Conn) Exec(ctx context.Context, sql string, arguments ...any) error {
	_, err := conn.pool.Exec(ctx, sql, arguments...)

	return Translate(err)
}

// Query executes a database query.
func (conn *Conn) Query(ctx context.Context, sql string, arguments ...any) (Rows, error) {
	rows, err := conn.pool.Query(ctx, sql, arguments...)

	if err != nil {
		return nil, Translate(err)
	}

	return rows, nil
}

// QueryRow executes a database query returning Row data.
func (conn *Conn) QueryRow(ctx context.Context, sql string, arguments ...any) Row {
	return translatedRow{conn.pool.QueryRow(ctx, sql, arguments...)}
}

// InTx runs fn inside a transaction, committing if it returns nil and
// rolling back otherwise.
func (conn *Conn) InTx(ctx context.Context, fn func(tx Queryable) error) error {
	pgTx, err := conn.pool.Begin(ctx)

	if err != nil {
		return Translate(err)
	}

	defer func() {
		// Rollback after a commit is a no-op.
		_ = pgTx.Rollback(context.Background())
	}()

	if err := fn(&Tx{tx: pgTx}); err != nil {
		return err
	}

	return Translate(pgTx.Commit(ctx))
}

// Tx is a Queryable bound to one transaction.
type Tx struct {
	tx pgx.Tx
}

// Exec executes a query in the transaction.
func (tx *Tx) Exec(ctx context.Context, sql string, arguments ...any) error {
	_, err := tx.tx.Exec(ctx, sql, arguments...)

	return Translate(err)
}

// Query executes a query in the transaction.
func (tx *Tx) Query(ctx context.Context, sql string, arguments ...any) (Rows, error) {
	rows, err := tx.tx.Query(ctx, sql, arguments...)

	if err != nil {
		return nil, Translate(err)
	}

	return rows, nil
}

// QueryRow executes a query in the transaction returning Row data.
func (tx *Tx) QueryRow(ctx context.Context, sql string, arguments ...any) Row {
	return translatedRow{tx.tx.QueryRow(ctx, sql, arguments...)}
}

type translatedRow struct {
	row pgx.Row
}

func (row translatedRow) Scan(dest ...any) error {
	return Translate(row.row.Scan(dest...))
}

// Queryable defines an interface for a connection.
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) error
	Query(ctx context.Context, sql string, arguments ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) Row
}
