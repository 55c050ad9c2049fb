package reschedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/c50bossio/6fb-booking-sub003/internal/domain/schedule"
)

// ===============================
// Estados da máquina de resolução
// ===============================

type State string

const (
	StateIdle             State = "idle"
	StateAnalyzing        State = "analyzing"
	StateAutoCommit       State = "auto_commit"
	StateAwaitingDecision State = "awaiting_decision"
	StateCommitting       State = "committing"
	StateCommitted        State = "committed"
	StateRolledBack       State = "rolled_back"
)

// PendingUpdate é a remarcação aguardando resolução. No máximo uma por
// máquina: um arrasto ativo por vez.
type PendingUpdate struct {
	AttemptID     uuid.UUID `json:"attempt_id"`
	AppointmentID uint      `json:"appointment_id"`
	NewStart      time.Time `json:"new_start"`
}

// Outcome é a fotografia devolvida ao chamador após cada entrada na
// máquina: estado alcançado, análise e sugestões quando houver.
type Outcome struct {
	State       State                      `json:"state"`
	AttemptID   uuid.UUID                  `json:"attempt_id"`
	Analysis    *schedule.ConflictAnalysis `json:"analysis,omitempty"`
	Pending     *PendingUpdate             `json:"pending,omitempty"`
	Suggestions []time.Time                `json:"suggestions,omitempty"`
}

// ===============================
// Callbacks para a camada de UI
// ===============================

// Listener recebe o ciclo de vida da remarcação. O núcleo nunca
// propaga pânico por aqui e nunca faz trabalho de apresentação:
// formatação e localização são problema de quem renderiza.
type Listener interface {
	OnAnalysisComplete(analysis schedule.ConflictAnalysis)
	OnStateChange(state State, pending *PendingUpdate)
	OnCommitted(appointmentID uint, newStart time.Time)
	OnRolledBack(appointmentID uint, reason error)
}

type NopListener struct{}

func (NopListener) OnAnalysisComplete(schedule.ConflictAnalysis) {}
func (NopListener) OnStateChange(State, *PendingUpdate)          {}
func (NopListener) OnCommitted(uint, time.Time)                  {}
func (NopListener) OnRolledBack(uint, error)                     {}

// ===============================
// Portas (colaboradores externos)
// ===============================

// SnapshotSource fornece o recorte read-only que a análise consome.
type SnapshotSource interface {
	// Appointment devolve o agendamento; ValidationError quando não existe.
	Appointment(ctx context.Context, appointmentID uint) (schedule.Slot, error)

	// DaySlots lista os agendamentos do barbeiro no dia do candidato.
	DaySlots(ctx context.Context, barberID uint, day time.Time) ([]schedule.Slot, error)

	// DayHours resolve o expediente do barbeiro; nil quando não atende.
	DayHours(ctx context.Context, barberID uint, day time.Time) (*schedule.DayHours, error)

	// Rules devolve as regras vigentes e o limiar de risco da barbearia.
	Rules(ctx context.Context, barberID uint) (schedule.RuleConfig, int, error)
}

// Persistence é a colaboração externa updateAppointment. Rejeições
// chegam como *PersistenceError com código estruturado.
type Persistence interface {
	UpdateAppointmentStart(ctx context.Context, appointmentID uint, newStart time.Time) error
}
