package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeStorage struct {
	delay    time.Duration
	err      error
	stubbed bool
}

func (storage fakeStorage) Ping(ctx context.Context) error {
	time.Sleep(storage.delay)

	return storage.err
}

func (storage fakeStorage) Stubbed() bool {
	return storage.stubbed
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		storage fakeStorage
		want    string
	}{
		{"healthy", fakeStorage{}, StatusHealthy},
		{"slow", fakeStorage{delay: 20 * time.Millisecond}, StatusDegraded},
		{"ping fails", fakeStorage{err: errors.New("connection refused")}, StatusUnavailable},
		{"stub installed", fakeStorage{stubbed: true}, StatusUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := New(tt.storage, 10*time.Millisecond, zap.NewNop()).Check(context.Background())

			if report.Status != tt.want {
				t.Errorf("Status = %q, want %q", report.Status, tt.want)
			}

			if report.Service != ServiceName {
				t.Errorf("Service = %q", report.Service)
			}
		})
	}
}
