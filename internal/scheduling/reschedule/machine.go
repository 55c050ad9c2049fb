// Package reschedule orquestra o fluxo de remarcação otimista: o
// movimento entra no overlay antes de qualquer ida ao servidor, a
// análise de conflito decide entre commit automático e diálogo de
// decisão, e cada tentativa termina em Committed ou RolledBack.
package reschedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/c50bossio/6fb-booking-sub003/internal/domain/appointment"
	"github.com/c50bossio/6fb-booking-sub003/internal/domain/schedule"
	"github.com/c50bossio/6fb-booking-sub003/internal/scheduling/optimistic"
	"github.com/c50bossio/6fb-booking-sub003/internal/scheduling/undo"
)

const defaultMaxSuggestions = 3

type Config struct {
	UndoWindow     time.Duration
	MaxSuggestions int
	Listener       Listener
	Logger         *zap.Logger
}

// Machine conduz uma remarcação por vez para um barbeiro.
type Machine struct {
	mu sync.Mutex

	state       State
	pending     *PendingUpdate
	analysis    *schedule.ConflictAnalysis
	suggestions []time.Time

	// recorte base do agendamento em decisão, para reaplicar o overlay
	ground schedule.Slot

	snapshots SnapshotSource
	persist   Persistence
	coord     *optimistic.Coordinator
	undoMgr   *undo.Manager

	maxSuggestions int
	listener       Listener
	log            *zap.Logger
}

func NewMachine(snapshots SnapshotSource, persist Persistence, cfg Config) *Machine {
	listener := cfg.Listener
	if listener == nil {
		listener = NopListener{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSuggestions := cfg.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}

	return &Machine{
		state:          StateIdle,
		snapshots:      snapshots,
		persist:        persist,
		coord:          optimistic.NewCoordinator(),
		undoMgr:        undo.NewManager(cfg.UndoWindow),
		maxSuggestions: maxSuggestions,
		listener:       listener,
		log:            logger,
	}
}

// Coordinator expõe a leitura oficial (overlay) para quem renderiza.
func (m *Machine) Coordinator() *optimistic.Coordinator {
	return m.coord
}

// ===============================
// Entradas da máquina
// ===============================

// Propose processa um novo movimento candidato. Rejeita com
// ErrUpdateInProgress enquanto outra remarcação do mesmo agendamento
// não assentar. Verificação de presença, sem fila.
func (m *Machine) Propose(ctx context.Context, appointmentID uint, newStart time.Time) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateAwaitingDecision {
		return nil, ErrUpdateInProgress
	}

	return m.propose(ctx, appointmentID, newStart)
}

// ProceedAnyway confirma a remarcação arriscada: reaplica o overlay e
// persiste, ignorando o limiar desta única vez.
func (m *Machine) ProceedAnyway(ctx context.Context) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingDecision || m.pending == nil {
		return nil, ErrNoPendingDecision
	}

	if err := m.coord.Apply(m.pending.AppointmentID, m.ground.Start, m.pending.NewStart); err != nil {
		return nil, err
	}

	return m.commit(ctx)
}

// Cancel descarta a decisão pendente. Nenhuma chamada de persistência
// foi ou será emitida para esta tentativa.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingDecision {
		return ErrNoPendingDecision
	}

	m.log.Debug("reschedule cancelled by user",
		zap.Uint("appointment_id", m.pending.AppointmentID))

	m.reset()
	return nil
}

// ChooseAlternative troca o candidato e recursa pelo mesmo pipeline.
func (m *Machine) ChooseAlternative(ctx context.Context, newStart time.Time) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAwaitingDecision || m.pending == nil {
		return nil, ErrNoPendingDecision
	}

	appointmentID := m.pending.AppointmentID
	m.reset()

	return m.propose(ctx, appointmentID, newStart)
}

// Undo desfaz o último commit dentro da janela. O desfazer é um novo
// movimento proposto pelo pipeline normal, não uma mutação especial.
func (m *Machine) Undo(ctx context.Context) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateAwaitingDecision {
		return nil, ErrUpdateInProgress
	}

	rec, ok := m.undoMgr.Take()
	if !ok {
		return nil, ErrNothingToUndo
	}

	return m.propose(ctx, rec.AppointmentID, rec.PreviousStart)
}

// UndoAvailable informa se ainda há commit desfazível na janela.
func (m *Machine) UndoAvailable() (undo.Record, bool) {
	return m.undoMgr.Peek()
}

// ===============================
// Pipeline interno (com lock)
// ===============================

func (m *Machine) propose(ctx context.Context, appointmentID uint, newStart time.Time) (*Outcome, error) {
	if newStart.IsZero() {
		return nil, ErrValidation("invalid_start")
	}

	ground, err := m.snapshots.Appointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !domain.IsMovable(domain.Status(ground.Status)) {
		return nil, ErrValidation("not_movable")
	}

	// otimista: o overlay entra antes da análise terminar
	if err := m.coord.Apply(appointmentID, ground.Start, newStart); err != nil {
		return nil, err
	}

	attempt := uuid.New()
	m.ground = ground
	m.pending = &PendingUpdate{
		AttemptID:     attempt,
		AppointmentID: appointmentID,
		NewStart:      newStart,
	}
	m.setState(StateAnalyzing)

	candidate := ground
	candidate.Start = newStart
	candidate.End = newStart.Add(ground.Duration())

	rules, threshold, err := m.snapshots.Rules(ctx, ground.BarberID)
	if err != nil {
		return nil, m.abort(err)
	}

	slots, err := m.snapshots.DaySlots(ctx, ground.BarberID, newStart)
	if err != nil {
		return nil, m.abort(err)
	}
	m.overlay(slots)

	hours, err := m.snapshots.DayHours(ctx, ground.BarberID, newStart)
	if err != nil {
		return nil, m.abort(err)
	}

	analysis := schedule.Analyze(candidate, slots, rules, hours)
	m.analysis = &analysis
	m.listener.OnAnalysisComplete(analysis)

	m.log.Debug("reschedule analyzed",
		zap.String("attempt_id", attempt.String()),
		zap.Uint("appointment_id", appointmentID),
		zap.Int("risk_score", analysis.RiskScore),
		zap.Int("conflicts", len(analysis.Conflicts)))

	if analysis.RiskScore <= threshold {
		m.setState(StateAutoCommit)
		return m.commit(ctx)
	}

	// arriscado: desfaz o overlay já, a UI não exibe movimento não
	// confirmado enquanto o usuário decide. A tentativa fica retida
	// para proceed/cancel/alternative.
	_ = m.coord.Rollback(appointmentID)
	m.suggestions = schedule.SuggestAlternatives(candidate, slots, rules, hours, m.maxSuggestions)
	m.setState(StateAwaitingDecision)

	return m.outcome(), nil
}

func (m *Machine) commit(ctx context.Context) (*Outcome, error) {
	appointmentID := m.pending.AppointmentID
	newStart := m.pending.NewStart

	m.setState(StateCommitting)

	if err := m.persist.UpdateAppointmentStart(ctx, appointmentID, newStart); err != nil {
		// rollback incondicional antes do erro subir
		_ = m.coord.Rollback(appointmentID)
		m.setState(StateRolledBack)
		m.listener.OnRolledBack(appointmentID, err)

		m.log.Warn("reschedule rolled back",
			zap.Uint("appointment_id", appointmentID),
			zap.Error(err))

		out := m.outcome()
		m.reset()
		return out, err
	}

	previous, _ := m.coord.Original(appointmentID)
	_ = m.coord.Commit(appointmentID)
	m.undoMgr.Record(appointmentID, previous)

	m.setState(StateCommitted)
	m.listener.OnCommitted(appointmentID, newStart)

	m.log.Info("reschedule committed",
		zap.Uint("appointment_id", appointmentID),
		zap.Time("new_start", newStart))

	out := m.outcome()
	m.reset()
	return out, nil
}

// abort desfaz o overlay quando o snapshot falha no meio da análise.
func (m *Machine) abort(err error) error {
	appointmentID := m.pending.AppointmentID
	_ = m.coord.Rollback(appointmentID)
	m.setState(StateRolledBack)
	m.listener.OnRolledBack(appointmentID, err)
	m.reset()
	return err
}

func (m *Machine) setState(s State) {
	m.state = s
	m.listener.OnStateChange(s, m.pending)
}

func (m *Machine) reset() {
	m.pending = nil
	m.analysis = nil
	m.suggestions = nil
	m.ground = schedule.Slot{}
	m.setState(StateIdle)
}

func (m *Machine) outcome() *Outcome {
	out := &Outcome{State: m.state}
	if m.pending != nil {
		out.AttemptID = m.pending.AttemptID
		pending := *m.pending
		out.Pending = &pending
	}
	if m.analysis != nil {
		analysis := *m.analysis
		out.Analysis = &analysis
	}
	if len(m.suggestions) > 0 {
		out.Suggestions = append([]time.Time(nil), m.suggestions...)
	}
	return out
}

// overlay reescreve os inícios com a leitura oficial do coordenador.
func (m *Machine) overlay(slots []schedule.Slot) {
	for i := range slots {
		effective := m.coord.Effective(slots[i].ID, slots[i].Start)
		if !effective.Equal(slots[i].Start) {
			duration := slots[i].Duration()
			slots[i].Start = effective
			slots[i].End = effective.Add(duration)
		}
	}
}
