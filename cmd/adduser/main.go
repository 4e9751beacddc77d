// Register a user by their LINE user ID, or update the profile of an existing one
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dense-analysis/fxwave/internal/env"
	"github.com/dense-analysis/fxwave/internal/logger"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/internal/store"
	"go.uber.org/zap"
)

// optionalString is a flag which records whether it was set.
type optionalString struct {
	value *string
}

func (flagValue *optionalString) String() string {
	if flagValue.value == nil {
		return ""
	}

	return *flagValue.value
}

func (flagValue *optionalString) Set(value string) error {
	flagValue.value = &value

	return nil
}

func main() {
	var displayName, email, pictureURL optionalString

	flag.Var(&displayName, "name", "Display name")
	flag.Var(&email, "email", "Email address")
	flag.Var(&pictureURL, "picture", "Profile picture URL")
	muted := flag.Bool("mute", false, "Disable LINE notifications")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: adduser [-name NAME] [-email EMAIL] [-picture URL] [-mute] <line_user_id>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	profile := model.UserProfile{
		LineUserID: flag.Arg(0),
		UserUpdate: model.UserUpdate{
			DisplayName: displayName.value,
			Email:       email.value,
			PictureURL:  pictureURL.value,
		},
	}

	if *muted {
		enabled := false
		profile.NotificationsEnabled = &enabled
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

	ctx := context.Background()
	handle, err := store.Open(ctx, config.DatabaseURL, store.RetryOptions{Attempts: 1}, log)

	if err != nil {
		log.Fatal("connection error", zap.Error(err))
	}

	defer handle.Close()

	user, created, err := handle.UpsertUser(ctx, profile)

	if err != nil {
		log.Fatal("cannot save user", zap.Error(err))
	}

	log.Info(
		"user saved",
		zap.String("id", user.ID.String()),
		zap.String("line_user_id", user.LineUserID),
		zap.Bool("created", created),
	)
}
