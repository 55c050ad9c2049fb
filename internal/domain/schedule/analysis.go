package schedule

import "time"

// ===============================
// Resultado da análise de conflito
// ===============================

// espelha domain/appointment; cancelado nunca ocupa horário
const statusCancelled = "cancelled"

type ConflictKind string

const (
	KindOverlap             ConflictKind = "overlap"
	KindBufferViolation     ConflictKind = "buffer_violation"
	KindBarberUnavailable   ConflictKind = "barber_unavailable"
	KindOutsideWorkingHours ConflictKind = "outside_working_hours"
)

// Slot é o recorte imutável de um agendamento usado pela análise.
type Slot struct {
	ID       uint
	BarberID uint
	Start    time.Time
	End      time.Time
	Status   string
}

func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps usa intervalos semiabertos [Start, End).
func (s Slot) Overlaps(other Slot) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Conflict descreve uma colisão detectada contra um agendamento
// existente (ou contra o expediente, quando ConflictingAppointmentID == 0).
type Conflict struct {
	ConflictingAppointmentID uint         `json:"conflicting_appointment_id,omitempty"`
	Kind                     ConflictKind `json:"kind"`
	OverlapMinutes           int          `json:"overlap_minutes"`
}

// ConflictAnalysis é efêmero: vale para uma tentativa de remarcação
// e é descartado quando ela se resolve.
type ConflictAnalysis struct {
	HasConflicts bool       `json:"has_conflicts"`
	RiskScore    int        `json:"risk_score"`
	Conflicts    []Conflict `json:"conflicts"`
}

// ===============================
// Expediente do barbeiro
// ===============================

// DayHours é o expediente do barbeiro já resolvido para o dia do
// candidato, com pausa de almoço opcional.
type DayHours struct {
	Start      time.Time
	End        time.Time
	LunchStart time.Time
	LunchEnd   time.Time
	HasLunch   bool
}

// ResolveDayHours projeta horários "15:04" no dia informado.
// Retorna false quando o expediente está inativo ou malformado.
func ResolveDayHours(day time.Time, start, end, lunchStart, lunchEnd string) (DayHours, bool) {
	if start == "" || end == "" {
		return DayHours{}, false
	}

	s, err1 := atDay(day, start)
	e, err2 := atDay(day, end)
	if err1 != nil || err2 != nil || !s.Before(e) {
		return DayHours{}, false
	}

	dh := DayHours{Start: s, End: e}

	if lunchStart != "" && lunchEnd != "" {
		ls, err1 := atDay(day, lunchStart)
		le, err2 := atDay(day, lunchEnd)
		if err1 == nil && err2 == nil && ls.Before(le) {
			dh.LunchStart = ls
			dh.LunchEnd = le
			dh.HasLunch = true
		}
	}

	return dh, true
}

func atDay(day time.Time, hm string) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		day.Location(),
	), nil
}

// Covers indica se o intervalo [start, end) cabe no expediente,
// sem encostar na pausa de almoço.
func (d DayHours) Covers(start, end time.Time) bool {
	if start.Before(d.Start) || end.After(d.End) {
		return false
	}
	if d.HasLunch && start.Before(d.LunchEnd) && end.After(d.LunchStart) {
		return false
	}
	return true
}
