package calculator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind classifies a keypad button.
type Kind string

const (
	KindDigit    Kind = "digit"
	KindOperator Kind = "operator"
	KindAction   Kind = "action"
)

func (k Kind) Valid() bool {
	switch k {
	case KindDigit, KindOperator, KindAction:
		return true
	}
	return false
}

// Action labels.
const (
	ActionAllClear   = "AC"
	ActionDelete     = "DEL"
	ActionToggleSign = "+/-"
	ActionPercent    = "%"
	ActionEvaluate   = "="
)

// ButtonPress is a single keypad event.
type ButtonPress struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// State is what the input state machine owns.
type State struct {
	Expression string
	Result     string
}

// InitialState is the state of a fresh or all-cleared calculator.
func InitialState() State {
	return State{Result: ZeroResult}
}

// Effect is work Reduce asks the caller to perform after the transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectEvaluate
)

// operatorChars are the characters that count as a trailing operator.
const operatorChars = "+-*/×÷−"

// trailingNumber splits an expression into everything before its trailing
// run of digits and dots, and that run.
var trailingNumber = regexp.MustCompile(`^(.*?)([\d.]+)$`)

// Reduce applies p to s. It never evaluates; an "=" press comes back as
// EffectEvaluate with s unchanged.
func Reduce(s State, p ButtonPress) (State, Effect) {
	switch p.Kind {
	case KindDigit:
		s.Expression += p.Label
	case KindOperator:
		s.Expression = pressOperator(s.Expression, p.Label)
	case KindAction:
		switch p.Label {
		case ActionAllClear:
			return InitialState(), EffectNone
		case ActionDelete:
			s.Expression = dropLastRune(s.Expression)
		case ActionToggleSign:
			s.Expression = toggleSign(s.Expression)
		case ActionPercent:
			s.Expression = applyPercent(s.Expression)
		case ActionEvaluate:
			return s, EffectEvaluate
		}
	}
	return s, EffectNone
}

func pressOperator(expr, op string) string {
	if expr == "" {
		// a leading minus starts a negative number
		if isMinus(op) {
			return op
		}
		return expr
	}
	if endsWithOperator(expr) {
		return dropLastRune(expr) + op
	}
	return expr + op
}

func toggleSign(expr string) string {
	if expr == "" {
		return expr
	}

	m := trailingNumber.FindStringSubmatch(expr)
	if m == nil {
		if strings.HasPrefix(expr, "-") {
			return expr[1:]
		}
		return "-" + expr
	}

	head, num := m[1], m[2]
	if hasSignMinus(head) {
		return head[:len(head)-1] + num
	}
	return head + "-" + num
}

func applyPercent(expr string) string {
	m := trailingNumber.FindStringSubmatch(expr)
	if m == nil {
		return expr + "%"
	}
	return m[1] + "(" + m[2] + "/100)"
}

// hasSignMinus reports whether head ends in a minus that belongs to the
// number after it rather than acting as a subtraction.
func hasSignMinus(head string) bool {
	if !strings.HasSuffix(head, "-") {
		return false
	}
	before := head[:len(head)-1]
	if before == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(before)
	return strings.ContainsRune(operatorChars, r) || r == '('
}

func endsWithOperator(expr string) bool {
	r, _ := utf8.DecodeLastRuneInString(expr)
	return r != utf8.RuneError && strings.ContainsRune(operatorChars, r)
}

func isMinus(label string) bool {
	return label == "-" || label == "−"
}

func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
