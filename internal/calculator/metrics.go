package calculator

import (
	"context"
	"fmt"

	"go-chi-calculator/internal/history"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments — initialized once via InitMetrics().
var (
	pressCounter  metric.Int64Counter
	evalCounter   metric.Int64Counter
	evalHistogram metric.Float64Histogram
	errorCounter  metric.Int64Counter
	resultGauge   metric.Float64Gauge
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	pressCounter, err = meter.Int64Counter("calculator.presses.total",
		metric.WithDescription("Total number of keypad presses handled"),
		metric.WithUnit("{press}"),
	)
	if err != nil {
		return fmt.Errorf("creating press counter: %w", err)
	}

	evalCounter, err = meter.Int64Counter("calculator.evaluations.total",
		metric.WithDescription("Total number of expression evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation counter: %w", err)
	}

	evalHistogram, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of expression evaluations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The last successfully evaluated numeric result"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}

// RegisterHistoryGauge exposes the history length on the Prometheus registry.
func RegisterHistoryGauge(reg prometheus.Registerer, store *history.Store) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "calculator_history_items",
		Help: "Number of records currently held in the calculator history.",
	}, func() float64 {
		return float64(store.Len())
	})

	if err := reg.Register(gauge); err != nil {
		return fmt.Errorf("registering history gauge: %w", err)
	}
	return nil
}

func recordPress(ctx context.Context, p ButtonPress) {
	if pressCounter == nil {
		return
	}
	pressCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(p.Kind))))
}

// recordEvaluation is a no-op until InitMetrics has run.
func recordEvaluation(ctx context.Context, res Result, elapsedMS float64) {
	if evalCounter == nil {
		return
	}

	outcome := "ok"
	if res.Err {
		outcome = "error"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	evalCounter.Add(ctx, 1, attrs)
	evalHistogram.Record(ctx, elapsedMS, attrs)

	if res.Err {
		return
	}
	if d, err := decimal.NewFromString(res.Value); err == nil {
		resultGauge.Record(ctx, d.InexactFloat64())
	}
}
