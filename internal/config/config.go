package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string
	HTTPAddr    string
	Environment string
	LockWait    time.Duration
}

func Load() (*Config, error) {
	// Try to load a .env file; missing file is fine, plain env vars work too.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:       os.Getenv("DB_DSN"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		Environment: os.Getenv("ENV"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LockWait = 2 * time.Second
	if raw := os.Getenv("LOCK_WAIT_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("LOCK_WAIT_MS must be a positive integer, got %q", raw)
		}
		cfg.LockWait = time.Duration(ms) * time.Millisecond
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
