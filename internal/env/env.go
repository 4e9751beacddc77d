// Package env loads fxwave settings from a .env file and the environment.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvironmentVariables loads the .env file or crashes the program with an error
//
// A missing .env file is fine; variables may come from the process environment.
func LoadEnvironmentVariables() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env error: %s\n", err)
		os.Exit(1)
	}
}

// Config holds the settings read from the environment.
type Config struct {
	DatabaseURL    string
	ListenAddress  string
	RequestTimeout time.Duration
	LogLevel       string
	LogEncoding    string
	ClickHouse     ClickHouseConfig
}

// ClickHouseConfig holds the connection settings for the price archive.
type ClickHouseConfig struct {
	Address  string
	Database string
	Username string
	Password string
}

// Read builds a Config from environment variables, applying defaults.
func Read() (Config, error) {
	config := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		ListenAddress: lookup("LISTEN_ADDRESS", ":8000"),
		LogLevel:      lookup("LOG_LEVEL", "info"),
		LogEncoding:   lookup("LOG_ENCODING", "json"),
		ClickHouse: ClickHouseConfig{
			Address:  lookup("CLICKHOUSE_ADDRESS", "localhost:9000"),
			Database: lookup("CLICKHOUSE_DATABASE", "fxwave"),
			Username: lookup("CLICKHOUSE_USERNAME", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		},
	}

	if config.DatabaseURL == "" {
		return config, errors.New("DATABASE_URL is not set")
	}

	timeout, err := time.ParseDuration(lookup("REQUEST_TIMEOUT", "10s"))

	if err != nil || timeout <= 0 {
		return config, fmt.Errorf("invalid REQUEST_TIMEOUT: %q", os.Getenv("REQUEST_TIMEOUT"))
	}

	config.RequestTimeout = timeout

	return config, nil
}

// MustRead loads .env and reads the Config, or crashes the program with an error
func MustRead() Config {
	LoadEnvironmentVariables()

	config, err := Read()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}

	return config
}

func lookup(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return fallback
}
