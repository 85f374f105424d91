package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/history"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/storage"
	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	store := history.NewStore(storage.NewMemory())
	reg := observability.NewPrometheusRegistry()
	if err := calculator.RegisterHistoryGauge(reg, store); err != nil {
		t.Fatalf("registering history gauge: %v", err)
	}

	calc := calculator.New(calculator.WithHistory(store))
	return NewRouter(calculator.NewHandler(calc), reg)
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterPressSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	body := []byte(`{"kind":"digit","label":"7"}`)
	req := httptest.NewRequest(http.MethodPost, "/calculator/press", bytes.NewReader(body))
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Body, &payload)

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}
	if got := payload["expression"]; got != "7" {
		t.Fatalf("expected expression %q, got %#v", "7", got)
	}
}

func TestNewRouterMetricsExposesHistoryGauge(t *testing.T) {
	router := newTestRouter(t)

	for _, label := range []string{"2", "+", "2"} {
		kind := "digit"
		if label == "+" {
			kind = "operator"
		}
		body := `{"kind":"` + kind + `","label":"` + label + `"}`
		testutil.ExecuteRequest(testutil.JSONRequest(http.MethodPost, "/calculator/press", body), router)
	}
	testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/evaluate", nil), router)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if !strings.Contains(w.Body.String(), "calculator_history_items 1") {
		t.Fatalf("expected history gauge of 1 in exposition, got:\n%s", w.Body.String())
	}
}
