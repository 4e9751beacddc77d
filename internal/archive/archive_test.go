package archive

import (
	"context"
	"testing"
	"time"

	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store/memory"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeRow struct {
	value int64
}

func (row fakeRow) Scan(dest ...any) error {
	*dest[0].(*int64) = row.value

	return nil
}

type fakeBatch struct {
	target *fakeTarget
	rows   [][]any
}

func (batch *fakeBatch) Append(values ...any) error {
	batch.rows = append(batch.rows, values)

	return nil
}

func (batch *fakeBatch) Send() error {
	batch.target.sent = append(batch.target.sent, batch.rows...)

	return nil
}

type fakeTarget struct {
	maxID   int64
	execs   []string
	batches int
	sent    [][]any
}

func (target *fakeTarget) Exec(ctx context.Context, sql string, arguments ...any) error {
	target.execs = append(target.execs, sql)

	return nil
}

func (target *fakeTarget) QueryRow(ctx context.Context, sql string, arguments ...any) Row {
	return fakeRow{target.maxID}
}

func (target *fakeTarget) PrepareBatch(ctx context.Context, sql string) (Batch, error) {
	target.batches += 1

	return &fakeBatch{target: target}, nil
}

func (target *fakeTarget) Close() error {
	return nil
}

func seedBars(t *testing.T, st *memory.Store, count int) {
	t.Helper()

	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		_, err := st.AppendBar(context.Background(), model.PriceBarInput{
			Pair:      "USD/JPY",
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Close:     decimal.NewNullDecimal(decimal.RequireFromString("150.1")),
		})

		if err != nil {
			t.Fatalf("AppendBar() error = %v", err)
		}
	}
}

func TestEnsureSchema(t *testing.T) {
	target := &fakeTarget{}

	if err := New(memory.New(), target, 0, zap.NewNop()).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	if len(target.execs) != len(schema) {
		t.Errorf("ran %d statements, want %d", len(target.execs), len(schema))
	}
}

func TestExportBarsResumesAfterArchivedID(t *testing.T) {
	st := memory.New()
	seedBars(t, st, 7)
	target := &fakeTarget{maxID: 2}

	count, err := New(st, target, 2, zap.NewNop()).ExportBars(context.Background())

	if err != nil {
		t.Fatalf("ExportBars() error = %v", err)
	}

	if count != 5 || len(target.sent) != 5 {
		t.Fatalf("exported %d bars, sent %d, want 5", count, len(target.sent))
	}

	if target.batches != 3 {
		t.Errorf("used %d batches, want 3", target.batches)
	}

	if id := target.sent[0][0].(int64); id != 3 {
		t.Errorf("first archived id = %d, want 3", id)
	}

	if open := target.sent[0][3].(*decimal.Decimal); open != nil {
		t.Errorf("null open_price was sent as %s", open)
	}
}

func TestExportSummaries(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	seedBars(t, st, 1)

	if _, err := st.UpsertDailySummary(ctx, model.DailySummaryInput{
		Pair:  "USD/JPY",
		Date:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Close: decimal.NewNullDecimal(decimal.RequireFromString("150.1")),
	}); err != nil {
		t.Fatalf("UpsertDailySummary() error = %v", err)
	}

	target := &fakeTarget{}
	count, err := New(st, target, 0, zap.NewNop()).ExportSummaries(ctx, model.TimeRange{})

	if err != nil {
		t.Fatalf("ExportSummaries() error = %v", err)
	}

	if count != 1 || len(target.sent) != 1 {
		t.Fatalf("exported %d summaries, sent %d", count, len(target.sent))
	}
}

func TestExportSummariesWithNothingToSend(t *testing.T) {
	target := &fakeTarget{}

	count, err := New(memory.New(), target, 0, zap.NewNop()).ExportSummaries(context.Background(), model.TimeRange{})

	if err != nil || count != 0 {
		t.Fatalf("ExportSummaries() = %d, %v", count, err)
	}

	if target.batches != 0 {
		t.Errorf("prepared %d batches for no rows", target.batches)
	}
}

func TestExportSummariesWithoutBars(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	if _, err := st.UpsertDailySummary(ctx, model.DailySummaryInput{
		Pair:  "GBP/USD",
		Date:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		High:  decimal.NewNullDecimal(decimal.RequireFromString("1.2710")),
		Low:   decimal.NewNullDecimal(decimal.RequireFromString("1.2650")),
		Close: decimal.NewNullDecimal(decimal.RequireFromString("1.2700")),
	}); err != nil {
		t.Fatalf("UpsertDailySummary() error = %v", err)
	}

	target := &fakeTarget{}
	count, err := New(st, target, 0, zap.NewNop()).ExportSummaries(ctx, model.TimeRange{})

	if err != nil {
		t.Fatalf("ExportSummaries() error = %v", err)
	}

	if count != 1 || len(target.sent) != 1 {
		t.Fatalf("exported %d summaries, sent %d", count, len(target.sent))
	}

	if pair := target.sent[0][0]; pair != "GBP/USD" {
		t.Errorf("sent pair %v", pair)
	}
}
