package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store/memory"
	"go.uber.org/zap"
)

const sampleCSV = `timestamp,open,high,low,close,volume
2025-01-15T10:00:00Z,150.10000,150.50000,150.00000,150.12345,120
1736938800,150.12345,150.99999,150.10000,150.99999,80
2025-01-15T12:00:00Z,150.9,150.0,151.0,150.5,10
not-a-time,1,1,1,1,1
`

func TestImportBars(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	reader, err := newBarReader(strings.NewReader(sampleCSV), "usdjpy")

	if err != nil {
		t.Fatalf("newBarReader() error = %v", err)
	}

	result, err := importBars(ctx, st, reader, zap.NewNop())

	if err != nil {
		t.Fatalf("importBars() error = %v", err)
	}

	// The third row has high below low and the fourth has no valid time.
	if result.imported != 2 || result.rejected != 2 {
		t.Fatalf("result = %+v", result)
	}

	barList, err := st.QueryBars(ctx, "USD/JPY", model.TimeRange{})

	if err != nil {
		t.Fatalf("QueryBars() error = %v", err)
	}

	if len(barList) != 2 {
		t.Fatalf("got %d bars, want 2", len(barList))
	}

	if !barList[1].Timestamp.Equal(time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("unix timestamp was read as %s", barList[1].Timestamp)
	}

	if barList[1].Close.Decimal.String() != "150.99999" {
		t.Errorf("close = %s", barList[1].Close.Decimal)
	}
}

func TestNewBarReaderNeedsPair(t *testing.T) {
	if _, err := newBarReader(strings.NewReader("timestamp,close\n"), ""); err == nil {
		t.Fatal("newBarReader() accepted a file with no pair")
	}
}
