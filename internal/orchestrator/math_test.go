package orchestrator

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovacs-dev/cogno/internal/models"
)

func TestAnswerMath(t *testing.T) {
	r := NewRouter("s", nil, nil, nil, nil, nil, nil, Options{}, slog.Default())
	it := models.Intent{Kind: models.IntentMath, Confidence: 0.9}

	cases := []struct {
		name string
		text string
		want string
	}{
		{"addition", "what is 2 + 3?", "2 + 3 = 5"},
		{"subtraction", "7 - 10", "7 - 10 = -3"},
		{"multiplication with unicode", "6 × 7", "6 × 7 = 42"},
		{"division", "9 / 2", "9 / 2 = 4.5"},
		{"unicode division", "8 ÷ 2", "8 ÷ 2 = 4"},
		{"decimals", "1.5 * 2", "1.5 * 2 = 3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answer, err := r.answerMath(tc.text, it)
			require.NoError(t, err)
			assert.Contains(t, answer.Content, tc.want)
			assert.InDelta(t, 0.9, answer.Confidence, 1e-9)
		})
	}
}

func TestAnswerMath_DivisionByZero(t *testing.T) {
	r := NewRouter("s", nil, nil, nil, nil, nil, nil, Options{}, slog.Default())

	answer, err := r.answerMath("5 / 0", models.Intent{Confidence: 0.9})
	require.NoError(t, err)
	assert.Contains(t, answer.Content, "divide by zero")
}

func TestAnswerMath_NoExpression(t *testing.T) {
	r := NewRouter("s", nil, nil, nil, nil, nil, nil, Options{}, slog.Default())

	answer, err := r.answerMath("math is hard", models.Intent{Confidence: 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, answer.Confidence, 1e-9)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "42", formatNumber(42))
	assert.Equal(t, "4.5", formatNumber(4.5))
	assert.Equal(t, "-3", formatNumber(-3))
	assert.Equal(t, "0.333333", formatNumber(1.0/3.0))
}
