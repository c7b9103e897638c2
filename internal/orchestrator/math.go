package orchestrator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkovacs-dev/cogno/internal/models"
)

// mathExprRe matches a simple binary arithmetic expression.
var mathExprRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*([-+*/×÷])\s*(-?\d+(?:\.\d+)?)`)

// answerMath evaluates the first `a op b` expression in the utterance.
func (r *Router) answerMath(text string, it models.Intent) (models.Answer, error) {
	m := mathExprRe.FindStringSubmatch(text)
	if m == nil {
		return models.Answer{
			Content:    "That looked like arithmetic, but I couldn't find a complete expression.",
			Confidence: 0.4,
		}, nil
	}

	a, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return models.Answer{}, fmt.Errorf("parsing operand %q: %w", m[1], err)
	}
	b, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return models.Answer{}, fmt.Errorf("parsing operand %q: %w", m[3], err)
	}

	var result float64
	switch m[2] {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*", "×":
		result = a * b
	case "/", "÷":
		if b == 0 {
			return models.Answer{
				Content:    "I can't divide by zero — even I have limits!",
				Confidence: it.Confidence,
			}, nil
		}
		result = a / b
	}

	return models.Answer{
		Content:    fmt.Sprintf("%s %s %s = %s", m[1], m[2], m[3], formatNumber(result)),
		Confidence: it.Confidence,
	}, nil
}

// formatNumber renders the result without trailing zeros.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
