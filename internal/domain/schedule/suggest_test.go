package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestAlternatives(t *testing.T) {
	rules := DefaultRules()
	hours, ok := ResolveDayHours(day, "09:00", "12:00", "", "")
	require.True(t, ok)

	// dia quase cheio: 09:30–10:00 ocupado
	existing := []Slot{slot(2, 1, 9, 30, 10, 0, "confirmed")}
	candidate := slot(1, 1, 9, 45, 10, 15, "confirmed")

	got := SuggestAlternatives(candidate, existing, rules, &hours, 3)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)

	// toda sugestão é de risco zero
	for _, start := range got {
		trial := candidate
		trial.Start = start
		trial.End = start.Add(30 * time.Minute)
		analysis := Analyze(trial, existing, rules, &hours)
		assert.Zero(t, analysis.RiskScore, "sugestão %s deveria ser livre", start)
	}

	// a primeira sugestão é a mais próxima do horário pedido
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t,
			absDiff(got[0], candidate.Start),
			absDiff(got[i], candidate.Start),
		)
	}
}

func TestSuggestAlternatives_FullDay(t *testing.T) {
	rules := DefaultRules()
	hours, ok := ResolveDayHours(day, "09:00", "10:00", "", "")
	require.True(t, ok)

	existing := []Slot{slot(2, 1, 9, 0, 10, 0, "confirmed")}
	candidate := slot(1, 1, 9, 0, 9, 30, "confirmed")

	got := SuggestAlternatives(candidate, existing, rules, &hours, 5)
	assert.Empty(t, got)
}

func TestSuggestAlternatives_Limits(t *testing.T) {
	rules := DefaultRules()

	candidate := slot(1, 1, 10, 0, 10, 30, "confirmed")

	assert.Nil(t, SuggestAlternatives(candidate, nil, rules, nil, 0))

	zero := candidate
	zero.End = zero.Start
	assert.Nil(t, SuggestAlternatives(zero, nil, rules, nil, 3))

	got := SuggestAlternatives(candidate, nil, rules, nil, 2)
	assert.Len(t, got, 2)
}
