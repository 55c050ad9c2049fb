package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
}

func slot(id uint, barberID uint, startH, startM, endH, endM int, status string) Slot {
	return Slot{
		ID:       id,
		BarberID: barberID,
		Start:    at(startH, startM),
		End:      at(endH, endM),
		Status:   status,
	}
}

func TestSlot_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Slot
		expected bool
	}{
		{
			name:     "sobreposição parcial",
			a:        slot(1, 1, 10, 0, 11, 0, "confirmed"),
			b:        slot(2, 1, 10, 30, 11, 30, "confirmed"),
			expected: true,
		},
		{
			name:     "encostados não se sobrepõem",
			a:        slot(1, 1, 10, 0, 11, 0, "confirmed"),
			b:        slot(2, 1, 11, 0, 12, 0, "confirmed"),
			expected: false,
		},
		{
			name:     "um contém o outro",
			a:        slot(1, 1, 9, 0, 12, 0, "confirmed"),
			b:        slot(2, 1, 10, 0, 10, 30, "confirmed"),
			expected: true,
		},
		{
			name:     "disjuntos",
			a:        slot(1, 1, 9, 0, 10, 0, "confirmed"),
			b:        slot(2, 1, 14, 0, 15, 0, "confirmed"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
		})
	}
}

// Buffer de 15 min, existente 10:00–10:30, candidato
// 10:35–11:05 invade 5 min do buffer: violação de buffer, risco
// baixo porém positivo, abaixo da severidade de um overlap.
func TestAnalyze_BufferViolation(t *testing.T) {
	rules := DefaultRules()
	existing := []Slot{slot(2, 1, 10, 0, 10, 30, "confirmed")}
	candidate := slot(1, 1, 10, 35, 11, 5, "confirmed")

	analysis := Analyze(candidate, existing, rules, nil)

	require.True(t, analysis.HasConflicts)
	require.Len(t, analysis.Conflicts, 1)
	assert.Equal(t, KindBufferViolation, analysis.Conflicts[0].Kind)
	assert.Equal(t, uint(2), analysis.Conflicts[0].ConflictingAppointmentID)
	assert.Equal(t, 0, analysis.Conflicts[0].OverlapMinutes)
	assert.Greater(t, analysis.RiskScore, 0)
	assert.Less(t, analysis.RiskScore, overlapBaseWeight)
}

// Candidato 10:15–10:45 sobrepõe 15 min de 10:00–10:30.
func TestAnalyze_Overlap(t *testing.T) {
	rules := DefaultRules()
	existing := []Slot{slot(2, 1, 10, 0, 10, 30, "confirmed")}
	candidate := slot(1, 1, 10, 15, 10, 45, "confirmed")

	analysis := Analyze(candidate, existing, rules, nil)

	require.True(t, analysis.HasConflicts)
	require.Len(t, analysis.Conflicts, 1)
	assert.Equal(t, KindOverlap, analysis.Conflicts[0].Kind)
	assert.Equal(t, 15, analysis.Conflicts[0].OverlapMinutes)
	assert.Equal(t, overlapBaseWeight+15*overlapPerMinute, analysis.RiskScore)
	assert.Greater(t, analysis.RiskScore, RiskThresholdDefault)
}

// Candidato às 07:00 com expediente da barbearia abrindo às 08:00.
func TestAnalyze_OutsideWorkingHours(t *testing.T) {
	rules := DefaultRules()
	candidate := slot(1, 1, 7, 0, 7, 30, "confirmed")

	analysis := Analyze(candidate, nil, rules, nil)

	require.True(t, analysis.HasConflicts)
	require.Len(t, analysis.Conflicts, 1)
	assert.Equal(t, KindOutsideWorkingHours, analysis.Conflicts[0].Kind)
	assert.Equal(t, uint(0), analysis.Conflicts[0].ConflictingAppointmentID)
	assert.Equal(t, outsideHoursWeight, analysis.RiskScore)
}

func TestAnalyze_NoConflicts(t *testing.T) {
	rules := DefaultRules()
	existing := []Slot{slot(2, 1, 10, 0, 10, 30, "confirmed")}
	candidate := slot(1, 1, 14, 0, 14, 30, "confirmed")

	analysis := Analyze(candidate, existing, rules, nil)

	assert.False(t, analysis.HasConflicts)
	assert.Equal(t, 0, analysis.RiskScore)
	assert.Empty(t, analysis.Conflicts)
}

func TestAnalyze_Filtering(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		existing  []Slot
		candidate Slot
		conflicts int
	}{
		{
			name:      "ignora o próprio candidato",
			existing:  []Slot{slot(1, 1, 10, 0, 10, 30, "confirmed")},
			candidate: slot(1, 1, 10, 0, 10, 30, "confirmed"),
			conflicts: 0,
		},
		{
			name:      "ignora cancelados",
			existing:  []Slot{slot(2, 1, 10, 0, 10, 30, "cancelled")},
			candidate: slot(1, 1, 10, 0, 10, 30, "confirmed"),
			conflicts: 0,
		},
		{
			name:      "concluído ainda ocupa o horário",
			existing:  []Slot{slot(2, 1, 10, 0, 10, 30, "completed")},
			candidate: slot(1, 1, 10, 0, 10, 30, "confirmed"),
			conflicts: 1,
		},
		{
			name:      "outro barbeiro não conta",
			existing:  []Slot{slot(2, 7, 10, 0, 10, 30, "confirmed")},
			candidate: slot(1, 1, 10, 0, 10, 30, "confirmed"),
			conflicts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyze(tt.candidate, tt.existing, rules, nil)
			assert.Len(t, analysis.Conflicts, tt.conflicts)
		})
	}
}

func TestAnalyze_AdjacencyRule(t *testing.T) {
	existing := []Slot{slot(2, 1, 10, 0, 10, 30, "confirmed")}
	candidate := slot(1, 1, 10, 30, 11, 0, "confirmed")

	rules := DefaultRules()
	rules.AllowAdjacent = true
	analysis := Analyze(candidate, existing, rules, nil)
	assert.False(t, analysis.HasConflicts, "encostado permitido")

	rules.AllowAdjacent = false
	analysis = Analyze(candidate, existing, rules, nil)
	require.True(t, analysis.HasConflicts, "sem adjacência vira violação de buffer")
	assert.Equal(t, KindBufferViolation, analysis.Conflicts[0].Kind)
}

func TestAnalyze_BarberUnavailable(t *testing.T) {
	rules := DefaultRules()
	hours, ok := ResolveDayHours(day, "09:00", "18:00", "12:00", "13:00")
	require.True(t, ok)

	tests := []struct {
		name      string
		candidate Slot
		kinds     []ConflictKind
	}{
		{
			name:      "dentro do expediente",
			candidate: slot(1, 1, 10, 0, 10, 30, "confirmed"),
			kinds:     nil,
		},
		{
			name:      "invade o almoço",
			candidate: slot(1, 1, 12, 30, 13, 0, "confirmed"),
			kinds:     []ConflictKind{KindBarberUnavailable},
		},
		{
			name:      "antes do expediente do barbeiro mas dentro da barbearia",
			candidate: slot(1, 1, 8, 0, 8, 30, "confirmed"),
			kinds:     []ConflictKind{KindBarberUnavailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyze(tt.candidate, nil, rules, &hours)

			var kinds []ConflictKind
			for _, c := range analysis.Conflicts {
				kinds = append(kinds, c.Kind)
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestAnalyze_RiskScoreClamped(t *testing.T) {
	rules := DefaultRules()

	// três overlaps longos estourariam 100 sem o clamp
	existing := []Slot{
		slot(2, 1, 10, 0, 11, 0, "confirmed"),
		slot(3, 1, 10, 0, 11, 0, "confirmed"),
		slot(4, 1, 10, 0, 11, 0, "confirmed"),
	}
	candidate := slot(1, 1, 10, 0, 11, 0, "confirmed")

	analysis := Analyze(candidate, existing, rules, nil)

	assert.Equal(t, 100, analysis.RiskScore)
	assert.Len(t, analysis.Conflicts, 3)
}

func TestResolveDayHours(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		ok         bool
	}{
		{name: "válido", start: "09:00", end: "18:00", ok: true},
		{name: "vazio", start: "", end: "", ok: false},
		{name: "invertido", start: "18:00", end: "09:00", ok: false},
		{name: "malformado", start: "9h", end: "18:00", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ResolveDayHours(day, tt.start, tt.end, "", "")
			assert.Equal(t, tt.ok, ok)
		})
	}
}
