package main

import (
	"fmt"
	"strconv"

	"go-chi-calculator/internal/history"
	"go-chi-calculator/internal/storage"
)

// config is the process configuration, read from the environment.
type config struct {
	Addr         string
	Storage      string
	StoragePath  string
	HistoryLimit int
	RecordErrors bool
	LogLevel     string
	OTLPLogs     bool
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		Addr:         getenvDefault(getenv, "CALC_ADDR", ":8080"),
		Storage:      getenvDefault(getenv, "CALC_STORAGE", storage.BackendFile),
		StoragePath:  getenv("CALC_STORAGE_PATH"),
		HistoryLimit: history.DefaultLimit,
		RecordErrors: true,
		LogLevel:     getenvDefault(getenv, "CALC_LOG_LEVEL", "info"),
	}

	switch cfg.Storage {
	case storage.BackendMemory, storage.BackendFile, storage.BackendSQLite:
	default:
		return config{}, fmt.Errorf("CALC_STORAGE: %w: %q", storage.ErrUnknownBackend, cfg.Storage)
	}

	if cfg.StoragePath == "" {
		switch cfg.Storage {
		case storage.BackendFile:
			cfg.StoragePath = "data"
		case storage.BackendSQLite:
			cfg.StoragePath = "calculator.db"
		}
	}

	if v := getenv("CALC_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return config{}, fmt.Errorf("CALC_HISTORY_LIMIT: want a non-negative integer, got %q", v)
		}
		cfg.HistoryLimit = n
	}

	var err error
	if cfg.RecordErrors, err = parseBool(getenv, "CALC_RECORD_ERRORS", true); err != nil {
		return config{}, err
	}
	if cfg.OTLPLogs, err = parseBool(getenv, "CALC_OTLP_LOGS", false); err != nil {
		return config{}, err
	}

	return cfg, nil
}

func getenvDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
