package calculator

import (
	"context"
	"strings"
	"testing"

	"go-chi-calculator/internal/history"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterHistoryGaugeTracksStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := history.NewStore(nil)

	if err := RegisterHistoryGauge(reg, store); err != nil {
		t.Fatalf("registering gauge: %v", err)
	}

	store.Append(context.Background(), history.Item{ID: "a"})
	store.Append(context.Background(), history.Item{ID: "b"})

	want := `
# HELP calculator_history_items Number of records currently held in the calculator history.
# TYPE calculator_history_items gauge
calculator_history_items 2
`
	if err := promtestutil.GatherAndCompare(reg, strings.NewReader(want), "calculator_history_items"); err != nil {
		t.Fatalf("unexpected metric exposition: %v", err)
	}

	if err := RegisterHistoryGauge(reg, store); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
