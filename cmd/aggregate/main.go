// Roll FX price bars up into daily summaries, once or on a schedule
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dense-analysis/fxwave/internal/aggregate"
	"github.com/dense-analysis/fxwave/internal/env"
	"github.com/dense-analysis/fxwave/internal/logger"
	"github.com/dense-analysis/fxwave/internal/route/query"
	"github.com/dense-analysis/fxwave/internal/store"
	"go.uber.org/zap"
)

func main() {
	dayFlag := flag.String("day", "", "UTC day to summarize as YYYY-MM-DD, yesterday by default")
	schedule := flag.String("schedule", "", "Cron spec to keep running on, such as \"5 0 * * *\"")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retry := store.RetryOptions{Attempts: 1}

	if *schedule != "" {
		retry = store.DefaultRetryOptions()
	}

	handle, err := store.Open(ctx, config.DatabaseURL, retry, log)

	if err != nil {
		log.Fatal("connection error", zap.Error(err))
	}

	defer handle.Close()

	aggregator := aggregate.New(handle, log)

	if *schedule != "" {
		if err := aggregator.Schedule(ctx, *schedule, time.Now); err != nil {
			log.Fatal("invalid schedule", zap.String("schedule", *schedule), zap.Error(err))
		}

		return
	}

	day := time.Now().UTC().AddDate(0, 0, -1)

	if *dayFlag != "" {
		if day, err = query.ParseTime("day", *dayFlag); err != nil {
			log.Fatal("invalid day", zap.Error(err))
		}
	}

	summaries, err := aggregator.RunDay(ctx, day)

	if err != nil {
		log.Fatal("daily rollup failed", zap.Error(err))
	}

	log.Info("daily rollup finished", zap.Time("day", day), zap.Int("pairs", len(summaries)))
}
