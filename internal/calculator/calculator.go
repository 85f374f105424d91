package calculator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go-chi-calculator/internal/history"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var ErrHistoryItemNotFound = errors.New("history item not found")

// Snapshot is an immutable view of the calculator for presentation.
type Snapshot struct {
	Expression string         `json:"expression"`
	Result     string         `json:"result"`
	History    []history.Item `json:"history"`
}

// Calculator holds the expression, the displayed result and the history.
// Every transition runs to completion under a single lock, so concurrent
// callers observe the same sequence a single event loop would produce.
type Calculator struct {
	mu           sync.Mutex
	state        State
	eval         Evaluator
	history      *history.Store
	recordErrors bool
	now          func() time.Time
	newID        func() string
	logger       *zap.Logger

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

type Option func(*Calculator)

func WithEvaluator(ev Evaluator) Option {
	return func(c *Calculator) { c.eval = ev }
}

// WithHistory sets the history store. Without it the calculator keeps an
// in-memory, non-persisted history.
func WithHistory(s *history.Store) Option {
	return func(c *Calculator) { c.history = s }
}

// WithRecordErrors controls whether failed evaluations land in history.
func WithRecordErrors(record bool) Option {
	return func(c *Calculator) { c.recordErrors = record }
}

func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Calculator) { c.newID = newID }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(opts ...Option) *Calculator {
	c := &Calculator{
		state:        InitialState(),
		eval:         GovaluateEvaluator{},
		recordErrors: true,
		now:          time.Now,
		newID:        uuid.NewString,
		logger:       zap.NewNop(),
		subs:         make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.history == nil {
		c.history = history.NewStore(nil)
	}
	return c
}

// Press feeds one keypad event through the state machine.
func (c *Calculator) Press(ctx context.Context, p ButtonPress) Snapshot {
	c.mu.Lock()
	next, effect := Reduce(c.state, p)
	c.state = next
	if effect == EffectEvaluate {
		c.evaluateLocked(ctx)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return snap
}

// SetExpression replaces the expression with typed text.
func (c *Calculator) SetExpression(_ context.Context, expr string) Snapshot {
	c.mu.Lock()
	c.state.Expression = expr
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return snap
}

// Evaluate runs the evaluate-and-record sequence on the current expression.
func (c *Calculator) Evaluate(ctx context.Context) Snapshot {
	return c.Press(ctx, ButtonPress{Kind: KindAction, Label: ActionEvaluate})
}

// Clear resets expression and result; history is untouched.
func (c *Calculator) Clear(ctx context.Context) Snapshot {
	return c.Press(ctx, ButtonPress{Kind: KindAction, Label: ActionAllClear})
}

func (c *Calculator) ClearHistory(ctx context.Context) Snapshot {
	c.mu.Lock()
	c.history.Clear(ctx)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("history cleared")
	c.notify(snap)
	return snap
}

// Recall loads a past expression back into the input and evaluates it.
func (c *Calculator) Recall(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	item, ok := c.history.Get(id)
	if !ok {
		c.mu.Unlock()
		return Snapshot{}, ErrHistoryItemNotFound
	}

	c.state.Expression = item.Expression
	c.evaluateLocked(ctx)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return snap, nil
}

func (c *Calculator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// History exposes the backing store.
func (c *Calculator) History() *history.Store {
	return c.history
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (c *Calculator) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Calculator) notify(snap Snapshot) {
	c.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Calculator) snapshotLocked() Snapshot {
	return Snapshot{
		Expression: c.state.Expression,
		Result:     c.state.Result,
		History:    c.history.Items(),
	}
}

// evaluateLocked is the evaluate-and-record sequence. Caller holds c.mu.
func (c *Calculator) evaluateLocked(ctx context.Context) {
	expr := strings.TrimSpace(c.state.Expression)
	if expr == "" {
		c.state.Result = ZeroResult
		return
	}

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(attribute.String("calculator.expression", expr)),
	)
	defer span.End()

	start := time.Now()
	res, err := evaluate(c.eval, expr)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	c.state.Result = res.Value
	recordEvaluation(ctx, res, elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		c.logger.Warn("evaluation failed",
			zap.String("expression", expr),
			zap.Error(err),
		)
	} else {
		span.SetAttributes(attribute.String("calculator.result", res.Value))
		span.SetStatus(codes.Ok, "")
		c.logger.Info("expression evaluated",
			zap.String("expression", expr),
			zap.String("result", res.Value),
			zap.Float64("duration_ms", elapsed),
		)
	}

	if res.Err && !c.recordErrors {
		return
	}

	c.history.Append(ctx, history.Item{
		ID:         c.newID(),
		Expression: expr,
		Result:     res.Value,
		Timestamp:  c.now().UnixMilli(),
	})
}
