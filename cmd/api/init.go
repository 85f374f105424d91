package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/history"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/storage"
)

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

// initCalculator opens the configured storage, loads the persisted history
// and builds the calculator on top of it. The history gauge is registered
// on reg.
func initCalculator(ctx context.Context, cfg config, reg prometheus.Registerer) (*calculator.Calculator, func() error, error) {
	kv, closeStorage, err := storage.Open(ctx, cfg.Storage, cfg.StoragePath)
	if err != nil {
		return nil, nil, err
	}

	store := history.NewStore(kv,
		history.WithLimit(cfg.HistoryLimit),
		history.WithLogger(observability.Logger.Named("history")),
	)
	store.Load(ctx)

	if err := calculator.RegisterHistoryGauge(reg, store); err != nil {
		closeStorage()
		return nil, nil, err
	}

	calc := calculator.New(
		calculator.WithHistory(store),
		calculator.WithRecordErrors(cfg.RecordErrors),
		calculator.WithLogger(observability.Logger.Named("calculator")),
	)

	calc.Subscribe(func(s calculator.Snapshot) {
		observability.Logger.Debug("calculator state changed",
			zap.String("expression", s.Expression),
			zap.String("result", s.Result),
			zap.Int("history_items", len(s.History)),
		)
	})

	observability.Logger.Info("calculator ready",
		zap.String("storage", cfg.Storage),
		zap.String("storage_path", cfg.StoragePath),
		zap.Int("history_items", store.Len()),
		zap.Int("history_limit", cfg.HistoryLimit),
	)

	return calc, closeStorage, nil
}
