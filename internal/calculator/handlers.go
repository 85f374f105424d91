package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Handler exposes a Calculator over HTTP. Every endpoint answers with the
// calculator's current Snapshot unless stated otherwise.
type Handler struct {
	calc *Calculator
}

func NewHandler(calc *Calculator) *Handler {
	return &Handler{calc: calc}
}

// startSpan opens the per-operation child span and a trace-correlated logger.
func startSpan(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

func writeSnapshot(w http.ResponseWriter, span trace.Span, snap Snapshot) {
	span.SetAttributes(
		attribute.String("calculator.expression", snap.Expression),
		attribute.String("calculator.result", snap.Result),
	)
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, snap)
}

// State handles GET /calculator
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	_, span, _ := startSpan(r, "state")
	defer span.End()

	writeSnapshot(w, span, h.calc.Snapshot())
}

// Press handles POST /calculator/press
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "press")
	defer span.End()

	var p ButtonPress
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	if !p.Kind.Valid() {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "unknown button kind", fmt.Errorf("kind %q", p.Kind), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.press.kind", string(p.Kind)),
		attribute.String("calculator.press.label", p.Label),
	)
	recordPress(ctx, p)

	snap := h.calc.Press(ctx, p)

	logger.Debug("button pressed",
		zap.String("kind", string(p.Kind)),
		zap.String("label", p.Label),
		zap.String("expression", snap.Expression),
	)
	writeSnapshot(w, span, snap)
}

// SetExpression handles PUT /calculator/expression
func (h *Handler) SetExpression(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "set_expression")
	defer span.End()

	var req ExpressionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "set_expression", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	writeSnapshot(w, span, h.calc.SetExpression(ctx, req.Expression))
}

// Evaluate handles POST /calculator/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span, _ := startSpan(r, "evaluate")
	defer span.End()

	writeSnapshot(w, span, h.calc.Evaluate(ctx))
}

// Clear handles POST /calculator/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, span, _ := startSpan(r, "clear")
	defer span.End()

	writeSnapshot(w, span, h.calc.Clear(ctx))
}

// History handles GET /calculator/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	_, span, _ := startSpan(r, "history")
	defer span.End()

	items := h.calc.History().Items()
	span.SetAttributes(attribute.Int("calculator.history.items", len(items)))
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{Items: items})
}

// ClearHistory handles DELETE /calculator/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span, _ := startSpan(r, "clear_history")
	defer span.End()

	writeSnapshot(w, span, h.calc.ClearHistory(ctx))
}

// Recall handles POST /calculator/history/{id}/recall
func (h *Handler) Recall(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "recall")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("calculator.history.id", id))

	snap, err := h.calc.Recall(ctx, id)
	if errors.Is(err, ErrHistoryItemNotFound) {
		observability.RecordError(ctx, span, logger, errorCounter, "recall", "history item not found", fmt.Errorf("id %q: %w", id, err), http.StatusNotFound, w)
		return
	}

	writeSnapshot(w, span, snap)
}
