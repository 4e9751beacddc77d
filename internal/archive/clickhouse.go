package archive

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/dense-analysis/fxwave/internal/env"
)

type Row interface {
	Scan(dest ...any) error
}

type Batch interface {
	Append(values ...any) error
	Send() error
}

// Target is the analytics database rows are archived into.
type Target interface {
	Exec(ctx context.Context, sql string, arguments ...any) error
	QueryRow(ctx context.Context, sql string, arguments ...any) Row
	PrepareBatch(ctx context.Context, sql string) (Batch, error)
	Close() error
}

// Conn is a Target backed by ClickHouse.
type Conn struct {
	chConn clickhouse.Conn
}

// Connect opens a ClickHouse connection and checks it can be reached.
func Connect(ctx context.Context, config env.ClickHouseConfig) (*Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{config.Address},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		DialTimeout: time.Second * 5,
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()

		return nil, err
	}

	return &Conn{chConn: conn}, nil
}

func (conn *Conn) Close() error {
	return conn.chConn.Close()
}

func (conn *Conn) Exec(ctx context.Context, sql string, arguments ...any) error {
	return conn.chConn.Exec(ctx, sql, arguments...)
}

func (conn *Conn) QueryRow(ctx context.Context, sql string, arguments ...any) Row {
	return conn.chConn.QueryRow(ctx, sql, arguments...)
}

func (conn *Conn) PrepareBatch(ctx context.Context, sql string) (Batch, error) {
	return conn.chConn.PrepareBatch(ctx, sql)
}
