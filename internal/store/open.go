package store

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/database"
	"github.com/dense-analysis/fxwave/internal/store/memory"
	"github.com/dense-analysis/fxwave/internal/store/postgres"
	"go.uber.org/zap"
)

var (
	_ Store = (*postgres.Store)(nil)
	_ Store = (*memory.Store)(nil)
	_ Store = Unavailable{}
	_ Store = (*Handle)(nil)
)

// RetryOptions control how often an unreachable backend is retried.
type RetryOptions struct {
	// Attempts made by Open before it falls back to the Unavailable stub.
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryOptions are used by the server.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		Attempts:       3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
	}
}

type connectFunc func(ctx context.Context) (Store, error)

// Open selects a backend for a storage URL.
//
// memory:// gives an in-process store. postgres:// connects to PostgreSQL;
// if the server cannot be reached the Handle starts on the Unavailable stub
// and the real store is swapped in by a background loop bound to ctx.
func Open(ctx context.Context, storageURL string, retry RetryOptions, log *zap.Logger) (*Handle, error) {
	parsed, err := url.Parse(storageURL)

	if err != nil {
		return nil, fmt.Errorf("invalid storage URL: %w", err)
	}

	switch parsed.Scheme {
	case "memory":
		log.Warn("using in-memory storage, data will not survive a restart")

		return NewHandle(memory.New()), nil
	case "postgres", "postgresql":
		connect := func(ctx context.Context) (Store, error) {
			conn, err := database.Connect(ctx, storageURL, database.DefaultOptions())

			if err != nil {
				return nil, err
			}

			return postgres.New(conn), nil
		}

		return openWithRetry(ctx, connect, retry, log)
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", parsed.Scheme)
	}
}

func openWithRetry(ctx context.Context, connect connectFunc, retry RetryOptions, log *zap.Logger) (*Handle, error) {
	backoff := retry.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= max(retry.Attempts, 1); attempt++ {
		backend, err := connect(ctx)

		if err == nil {
			return NewHandle(backend), nil
		}

		if apperr.KindOf(err) != apperr.Unavailable {
			return nil, err
		}

		lastErr = err
		log.Warn("storage unreachable", zap.Int("attempt", attempt), zap.Error(err))

		if attempt < retry.Attempts && !sleep(ctx, backoff) {
			break
		}

		backoff = nextBackoff(backoff, retry.MaxBackoff)
	}

	log.Error("starting without storage, requests will fail until it is reachable", zap.Error(lastErr))
	handle := NewHandle(Unavailable{Reason: lastErr})

	go reconnect(ctx, handle, connect, backoff, retry.MaxBackoff, log)

	return handle, nil
}

func reconnect(ctx context.Context, handle *Handle, connect connectFunc, backoff, maxBackoff time.Duration, log *zap.Logger) {
	for sleep(ctx, backoff) {
		backend, err := connect(ctx)

		if err == nil {
			handle.Swap(backend)
			log.Info("storage reachable, leaving the unavailable stub")

			return
		}

		log.Debug("storage still unreachable", zap.Error(err))
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2

	if next <= 0 {
		next = 100 * time.Millisecond
	}

	if limit > 0 && next > limit {
		return limit
	}

	return next
}

// sleep waits for d, returning false if ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
