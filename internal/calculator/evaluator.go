package calculator

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"
)

// ErrorMarker is the result shown for any failed evaluation.
const ErrorMarker = "Error"

// ZeroResult is the result of an empty expression and of a cleared calculator.
const ZeroResult = "0"

// Evaluator computes the value of a conventional arithmetic expression
// (+ - * /, decimal numbers, parentheses).
type Evaluator interface {
	Evaluate(expression string) (any, error)
}

// GovaluateEvaluator evaluates expressions with govaluate.
type GovaluateEvaluator struct{}

// unaryMinus finds a minus sign directly after a binary operator. govaluate
// lexes runs like "*-" as one unknown operator, so the two are split apart.
var unaryMinus = regexp.MustCompile(`([-+*/])-`)

func (GovaluateEvaluator) Evaluate(expression string) (any, error) {
	expr, err := govaluate.NewEvaluableExpression(unaryMinus.ReplaceAllString(expression, "$1 -"))
	if err != nil {
		return nil, err
	}
	return expr.Evaluate(nil)
}

// Result is either a displayable value or the error marker.
type Result struct {
	Value string
	Err   bool
}

func errorResult() Result {
	return Result{Value: ErrorMarker, Err: true}
}

var errNonFinite = errors.New("non-finite result")

// Evaluate sanitizes raw and runs it through ev. Blank input short-circuits
// to the zero result. Every evaluator failure collapses into the error marker.
func Evaluate(ev Evaluator, raw string) Result {
	res, _ := evaluate(ev, raw)
	return res
}

// evaluate is Evaluate that also hands back the discarded failure for logging.
func evaluate(ev Evaluator, raw string) (res Result, err error) {
	if strings.TrimSpace(raw) == "" {
		return Result{Value: ZeroResult}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = errorResult(), fmt.Errorf("evaluator panic: %v", r)
		}
	}()

	v, err := ev.Evaluate(Sanitize(raw))
	if err != nil {
		return errorResult(), err
	}

	out, err := format(v)
	if err != nil {
		return errorResult(), err
	}
	return Result{Value: out}, nil
}

// format renders an evaluator value the way it would naturally print:
// numbers in their shortest round-trip decimal form.
func format(v any) (string, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("%w: %g", errNonFinite, n)
		}
		return decimal.NewFromFloat(n).String(), nil
	case float32:
		return format(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)).String(), nil
	case int64:
		return decimal.NewFromInt(n).String(), nil
	case nil:
		return "", errors.New("evaluator returned no value")
	default:
		return fmt.Sprint(n), nil
	}
}
