package schedule

import (
	"sort"
	"time"
)

// ===============================
// Pesos do score de risco
// ===============================

// Um overlap pesa proporcionalmente aos minutos sobrepostos; violação
// de buffer e problemas de expediente têm penalidade fixa. O score
// permite que o chamador aplique um limiar de política em vez de
// tratar qualquer conflito como bloqueio.
const (
	overlapBaseWeight   = 20
	overlapPerMinute    = 2
	overlapWeightCap    = 70
	bufferWeight        = 15
	outsideHoursWeight  = 40
	barberUnavailWeight = 35
)

// Analyze avalia o posicionamento candidato contra os agendamentos
// existentes sob RuleConfig. Pura e determinística: sem efeitos
// colaterais, mesma entrada produz a mesma saída.
//
// hours pode ser nil quando o expediente do barbeiro não se aplica
// (CheckBarberAvailability desligado ou expediente inativo no dia).
func Analyze(candidate Slot, all []Slot, rules RuleConfig, hours *DayHours) ConflictAnalysis {
	analysis := ConflictAnalysis{Conflicts: []Conflict{}}

	buffer := time.Duration(rules.BufferMinutes) * time.Minute

	others := relevant(candidate, all, rules)

	for _, other := range others {
		// Encostado é permitido quando a regra de adjacência está ativa.
		if rules.AllowAdjacent &&
			(other.End.Equal(candidate.Start) || candidate.End.Equal(other.Start)) {
			continue
		}

		if candidate.Overlaps(other) {
			minutes := rawOverlapMinutes(candidate, other)
			analysis.Conflicts = append(analysis.Conflicts, Conflict{
				ConflictingAppointmentID: other.ID,
				Kind:                     KindOverlap,
				OverlapMinutes:           minutes,
			})
			analysis.RiskScore += overlapScore(minutes)
			continue
		}

		expanded := Slot{
			Start: candidate.Start.Add(-buffer),
			End:   candidate.End.Add(buffer),
		}
		if expanded.Overlaps(other) {
			analysis.Conflicts = append(analysis.Conflicts, Conflict{
				ConflictingAppointmentID: other.ID,
				Kind:                     KindBufferViolation,
				OverlapMinutes:           0,
			})
			analysis.RiskScore += bufferWeight
		}
	}

	if outsideShopHours(candidate, rules) {
		analysis.Conflicts = append(analysis.Conflicts, Conflict{
			Kind: KindOutsideWorkingHours,
		})
		analysis.RiskScore += outsideHoursWeight
	}

	if rules.CheckBarberAvailability && hours != nil && !hours.Covers(candidate.Start, candidate.End) {
		analysis.Conflicts = append(analysis.Conflicts, Conflict{
			Kind: KindBarberUnavailable,
		})
		analysis.RiskScore += barberUnavailWeight
	}

	if analysis.RiskScore > 100 {
		analysis.RiskScore = 100
	}

	analysis.HasConflicts = len(analysis.Conflicts) > 0
	return analysis
}

// relevant filtra os agendamentos comparáveis: mesmo barbeiro (quando a
// regra pede), nunca o próprio candidato, nunca cancelados. Ordenado por
// início para resultado determinístico.
func relevant(candidate Slot, all []Slot, rules RuleConfig) []Slot {
	out := make([]Slot, 0, len(all))
	for _, s := range all {
		if s.ID == candidate.ID {
			continue
		}
		if s.Status == statusCancelled {
			continue
		}
		if rules.CheckBarberAvailability && s.BarberID != candidate.BarberID {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	return out
}

func rawOverlapMinutes(a, b Slot) int {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !start.Before(end) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

func overlapScore(minutes int) int {
	score := overlapBaseWeight + overlapPerMinute*minutes
	if score > overlapWeightCap {
		return overlapWeightCap
	}
	return score
}

func outsideShopHours(candidate Slot, rules RuleConfig) bool {
	day := candidate.Start
	opens := time.Date(day.Year(), day.Month(), day.Day(), rules.WorkDayStart, 0, 0, 0, day.Location())
	closes := time.Date(day.Year(), day.Month(), day.Day(), rules.WorkDayEnd, 0, 0, 0, day.Location())
	return candidate.Start.Before(opens) || candidate.End.After(closes)
}
