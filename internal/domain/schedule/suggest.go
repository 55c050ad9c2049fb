package schedule

import (
	"sort"
	"time"
)

// slotStep é o passo da varredura de horários alternativos.
const slotStep = 15 * time.Minute

// SuggestAlternatives varre o dia do candidato em passos de 15 minutos
// e devolve até max inícios cuja análise resulta em risco zero,
// ordenados pela proximidade do horário originalmente pedido.
//
// A varredura cobre o expediente do barbeiro quando conhecido; caso
// contrário, a janela de funcionamento da barbearia.
func SuggestAlternatives(candidate Slot, all []Slot, rules RuleConfig, hours *DayHours, max int) []time.Time {
	if max <= 0 {
		return nil
	}

	duration := candidate.Duration()
	if duration <= 0 {
		return nil
	}

	day := candidate.Start
	scanStart := time.Date(day.Year(), day.Month(), day.Day(), rules.WorkDayStart, 0, 0, 0, day.Location())
	scanEnd := time.Date(day.Year(), day.Month(), day.Day(), rules.WorkDayEnd, 0, 0, 0, day.Location())
	if hours != nil {
		scanStart = hours.Start
		scanEnd = hours.End
	}

	var free []time.Time

	for cur := scanStart; !cur.Add(duration).After(scanEnd); cur = cur.Add(slotStep) {
		trial := Slot{
			ID:       candidate.ID,
			BarberID: candidate.BarberID,
			Start:    cur,
			End:      cur.Add(duration),
			Status:   candidate.Status,
		}

		if analysis := Analyze(trial, all, rules, hours); analysis.RiskScore == 0 {
			free = append(free, cur)
		}
	}

	// mais próximos do horário pedido primeiro
	sort.SliceStable(free, func(i, j int) bool {
		return absDiff(free[i], candidate.Start) < absDiff(free[j], candidate.Start)
	})

	if len(free) > max {
		free = free[:max]
	}
	return free
}

func absDiff(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
