package calculator

import (
	"regexp"
	"strings"
)

// glyphReplacer maps keypad display glyphs onto evaluator operators.
var glyphReplacer = strings.NewReplacer(
	"×", "*",
	"÷", "/",
	"−", "-",
)

// percentPattern matches a plain non-negative number directly followed by %.
var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// Sanitize rewrites raw calculator text into syntax the evaluator accepts:
// display glyphs become ASCII operators and "n%" becomes "(n/100)".
// Percent applied to anything other than a plain number is left untouched.
func Sanitize(raw string) string {
	s := glyphReplacer.Replace(raw)
	return percentPattern.ReplaceAllString(s, "($1/100)")
}
