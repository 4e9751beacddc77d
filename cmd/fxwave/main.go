// Serve the FX wave alert API
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dense-analysis/fxwave/internal/env"
	"github.com/dense-analysis/fxwave/internal/logger"
	"github.com/dense-analysis/fxwave/internal/route"
	"github.com/dense-analysis/fxwave/internal/store"
	"github.com/dense-analysis/fxwave/pkg/lax"
	"go.uber.org/zap"
)

func main() {
	debug := flag.Bool("debug", false, "Include internal error details in responses")
	flag.Parse()

	if *debug {
		lax.EnableDebugMode()
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

	// Cancelled on shutdown, which also ends any background reconnect.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handle, err := store.Open(ctx, config.DatabaseURL, store.DefaultRetryOptions(), log)

	if err != nil {
		log.Fatal("storage error", zap.Error(err))
	}

	router := route.NewRouter(handle, route.Options{
		RequestTimeout: config.RequestTimeout,
		SlowStorage:    time.Second,
	}, log)

	server := http.Server{
		Addr:              config.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	log.Info("server started", zap.String("address", config.ListenAddress))
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	err = server.Shutdown(shutdownCtx)
	// Stop reconnecting before the backend is closed.
	cancel()
	handle.Close()

	if err != nil {
		log.Error("server shut down failed", zap.Error(err))

		return
	}

	log.Info("server shut down successfully")
}
