// Migrate the database from one state to another
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/dense-analysis/fxwave/internal/env"
	"github.com/dense-analysis/fxwave/internal/logger"
	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"
)

func parseSelectedMigration() int {
	selectedMigration := math.MaxInt32

	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "Too many arguments\n")
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		var err error
		selectedMigration, err = strconv.Atoi(os.Args[1])

		if err != nil || selectedMigration < 0 {
			fmt.Fprintf(os.Stderr, "Invalid migration number: %s\n", os.Args[1])
			os.Exit(1)
		}
	}

	return selectedMigration
}

func main() {
	selectedMigration := parseSelectedMigration()
	config := env.MustRead()
	log, err := logger.New(logger.Options{Level: config.LogLevel, Encoding: config.LogEncoding})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, config.DatabaseURL)

	if err != nil {
		log.Fatal("connection error", zap.Error(err))
	}

	defer conn.Close(ctx)

	executor, err := NewMigrationExecutor(conn, "migrations", log)

	if err != nil {
		log.Fatal("error loading migrations", zap.Error(err))
	}

	if err := executor.ApplyMigrations(ctx, selectedMigration); err != nil {
		log.Fatal("error applying migration", zap.Error(err))
	}
}
