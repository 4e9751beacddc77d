// Import FX price bars from a CSV file into the database
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/env"
	"github.com/dense-analysis/fxwave/internal/logger"
	"github.com/dense-analysis/fxwave/internal/store"
	"go.uber.org/zap"
)

type importResult struct {
	imported int
	rejected int
}

// importBars appends every bar from reader. Rows which fail validation are
// logged and skipped; any other error stops the import.
func importBars(ctx context.Context, prices store.PriceStore, reader *barReader, log *zap.Logger) (importResult, error) {
	var result importResult

	for {
		input, err := reader.Next()

		if errors.Is(err, io.EOF) {
			return result, nil
		}

		if err == nil {
			_, err = prices.AppendBar(ctx, input)
		}

		if err != nil {
			if apperr.KindOf(err) != apperr.Validation {
				return result, err
			}

			log.Warn("skipping row", zap.Int("line", reader.line), zap.Error(err))
			result.rejected += 1

			continue
		}

		result.imported += 1
	}
}

func main() {
	pair := flag.String("pair", "", "Pair for files without a pair column, such as USD/JPY")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ingest [-pair USD/JPY] <file.csv>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

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

	file, err := os.Open(flag.Arg(0))

	if err != nil {
		log.Fatal("cannot open file", zap.Error(err))
	}

	defer file.Close()

	reader, err := newBarReader(file, *pair)

	if err != nil {
		log.Fatal("invalid CSV file", zap.Error(err))
	}

	handle, err := store.Open(ctx, config.DatabaseURL, store.RetryOptions{Attempts: 1}, log)

	if err != nil {
		log.Fatal("connection error", zap.Error(err))
	}

	defer handle.Close()

	result, err := importBars(ctx, handle, reader, log)

	log.Info(
		"import finished",
		zap.Int("imported", result.imported),
		zap.Int("rejected", result.rejected),
	)

	if err != nil {
		log.Fatal("import stopped", zap.Error(err))
	}
}
