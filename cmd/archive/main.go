// Export FX prices and daily summaries into ClickHouse for analytics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dense-analysis/fxwave/internal/archive"
	"github.com/dense-analysis/fxwave/internal/env"
	"github.com/dense-analysis/fxwave/internal/logger"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/route/query"
	"github.com/dense-analysis/fxwave/internal/store"
	"go.uber.org/zap"
)

func main() {
	since := flag.String("since", "", "Only export summaries from this day, as YYYY-MM-DD")
	batchSize := flag.Int("batch", archive.DefaultBatchSize, "Bars sent per insert")
	flag.Parse()

	config := env.MustRead()
	log, err := logger.New(logger.Options{Level: config.LogLevel, Encoding: config.LogEncoding})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = log.Sync()
	}()

	var timeRange model.TimeRange

	if timeRange.From, err = query.ParseTime("since", *since); err != nil {
		log.Fatal("invalid -since", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle, err := store.Open(ctx, config.DatabaseURL, store.RetryOptions{Attempts: 1}, log)

	if err != nil {
		log.Fatal("connection error", zap.Error(err))
	}

	defer handle.Close()

	target, err := archive.Connect(ctx, config.ClickHouse)

	if err != nil {
		log.Fatal("clickhouse connection error", zap.Error(err))
	}

	defer target.Close()

	archiver := archive.New(handle, target, *batchSize, log)

	if err := archiver.EnsureSchema(ctx); err != nil {
		exitWithError(log, "create archive tables", err)
	}

	barCount, err := archiver.ExportBars(ctx)

	if err != nil {
		exitWithError(log, "export prices", err)
	}

	summaryCount, err := archiver.ExportSummaries(ctx, timeRange)

	if err != nil {
		exitWithError(log, "export summaries", err)
	}

	log.Info("archive finished", zap.Int("bars", barCount), zap.Int("summaries", summaryCount))
}

func exitWithError(log *zap.Logger, action string, err error) {
	log.Fatal(action+" failed", zap.Error(err))
}
