package reschedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c50bossio/6fb-booking-sub003/internal/domain/schedule"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
}

// ===============================
// Fakes das portas
// ===============================

type fakeSnapshots struct {
	appointments map[uint]schedule.Slot
	hours        *schedule.DayHours
	rules        schedule.RuleConfig
	threshold    int
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{
		appointments: map[uint]schedule.Slot{
			1: {ID: 1, BarberID: 5, Start: at(9, 0), End: at(9, 30), Status: "confirmed"},
			2: {ID: 2, BarberID: 5, Start: at(10, 0), End: at(10, 30), Status: "confirmed"},
		},
		rules:     schedule.DefaultRules(),
		threshold: schedule.RiskThresholdDefault,
	}
}

func (f *fakeSnapshots) Appointment(_ context.Context, id uint) (schedule.Slot, error) {
	s, ok := f.appointments[id]
	if !ok {
		return schedule.Slot{}, ErrValidation("appointment_not_found")
	}
	return s, nil
}

func (f *fakeSnapshots) DaySlots(_ context.Context, barberID uint, _ time.Time) ([]schedule.Slot, error) {
	var out []schedule.Slot
	for _, s := range f.appointments {
		if s.BarberID == barberID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSnapshots) DayHours(context.Context, uint, time.Time) (*schedule.DayHours, error) {
	return f.hours, nil
}

func (f *fakeSnapshots) Rules(context.Context, uint) (schedule.RuleConfig, int, error) {
	return f.rules, f.threshold, nil
}

type fakePersist struct {
	err       error
	calls     int
	snapshots *fakeSnapshots
}

func (f *fakePersist) UpdateAppointmentStart(_ context.Context, id uint, newStart time.Time) error {
	f.calls++
	if f.err != nil {
		return f.err
	}

	// persistência bem-sucedida muda a verdade no snapshot
	if s, ok := f.snapshots.appointments[id]; ok {
		duration := s.End.Sub(s.Start)
		s.Start = newStart
		s.End = newStart.Add(duration)
		f.snapshots.appointments[id] = s
	}
	return nil
}

type recorder struct {
	states     []State
	analyses   []schedule.ConflictAnalysis
	committed  []uint
	rolledBack []uint
	reasons    []error
}

func (r *recorder) OnAnalysisComplete(a schedule.ConflictAnalysis) {
	r.analyses = append(r.analyses, a)
}

func (r *recorder) OnStateChange(s State, _ *PendingUpdate) {
	r.states = append(r.states, s)
}

func (r *recorder) OnCommitted(id uint, _ time.Time) {
	r.committed = append(r.committed, id)
}

func (r *recorder) OnRolledBack(id uint, reason error) {
	r.rolledBack = append(r.rolledBack, id)
	r.reasons = append(r.reasons, reason)
}

func newTestMachine(t *testing.T) (*Machine, *fakeSnapshots, *fakePersist, *recorder) {
	t.Helper()

	snaps := newFakeSnapshots()
	persist := &fakePersist{snapshots: snaps}
	rec := &recorder{}
	m := NewMachine(snaps, persist, Config{Listener: rec})
	return m, snaps, persist, rec
}

// ===============================
// Commit automático
// ===============================

// Risco zero nunca passa por AwaitingDecision: vai direto a Committed.
func TestMachine_AutoCommit(t *testing.T) {
	m, snaps, persist, rec := newTestMachine(t)

	out, err := m.Propose(context.Background(), 1, at(14, 0))
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, out.State)
	require.NotNil(t, out.Analysis)
	assert.False(t, out.Analysis.HasConflicts)
	assert.Zero(t, out.Analysis.RiskScore)

	assert.Equal(t, 1, persist.calls)
	assert.Equal(t, at(14, 0), snaps.appointments[1].Start)
	assert.Equal(t, []uint{1}, rec.committed)

	assert.NotContains(t, rec.states, StateAwaitingDecision)
	assert.Equal(t, []State{
		StateAnalyzing, StateAutoCommit, StateCommitting, StateCommitted, StateIdle,
	}, rec.states)

	// commit liberou o registro: novo movimento do mesmo id é aceito
	_, err = m.Propose(context.Background(), 1, at(15, 0))
	assert.NoError(t, err)
}

// ===============================
// Decisão do usuário
// ===============================

func TestMachine_RiskyMoveAwaitsDecision(t *testing.T) {
	m, snaps, persist, rec := newTestMachine(t)

	// 10:15 sobrepõe 15 min do agendamento 2
	out, err := m.Propose(context.Background(), 1, at(10, 15))
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingDecision, out.State)
	require.NotNil(t, out.Analysis)
	assert.True(t, out.Analysis.HasConflicts)
	assert.Equal(t, schedule.KindOverlap, out.Analysis.Conflicts[0].Kind)
	require.NotNil(t, out.Pending)
	assert.Equal(t, uint(1), out.Pending.AppointmentID)
	assert.NotEmpty(t, out.Suggestions)

	// overlay desfeito enquanto o usuário decide, nada persistido
	assert.False(t, m.Coordinator().InFlight(1))
	assert.Zero(t, persist.calls)
	assert.Equal(t, at(9, 0), snaps.appointments[1].Start)
	assert.Contains(t, rec.states, StateAwaitingDecision)
}

func TestMachine_ProceedAnyway(t *testing.T) {
	m, snaps, persist, _ := newTestMachine(t)

	_, err := m.Propose(context.Background(), 1, at(10, 15))
	require.NoError(t, err)

	out, err := m.ProceedAnyway(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, out.State)
	assert.Equal(t, 1, persist.calls)
	assert.Equal(t, at(10, 15), snaps.appointments[1].Start)
}

func TestMachine_CancelDiscardsPending(t *testing.T) {
	m, snaps, persist, _ := newTestMachine(t)

	_, err := m.Propose(context.Background(), 1, at(10, 15))
	require.NoError(t, err)

	require.NoError(t, m.Cancel())

	assert.Zero(t, persist.calls)
	assert.Equal(t, at(9, 0), snaps.appointments[1].Start)

	// sem decisão aberta, proceed e cancel não fazem sentido
	_, err = m.ProceedAnyway(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingDecision)
	assert.ErrorIs(t, m.Cancel(), ErrNoPendingDecision)
}

func TestMachine_ChooseAlternative(t *testing.T) {
	m, snaps, _, _ := newTestMachine(t)

	first, err := m.Propose(context.Background(), 1, at(10, 15))
	require.NoError(t, err)
	require.Equal(t, StateAwaitingDecision, first.State)
	require.NotEmpty(t, first.Suggestions)

	out, err := m.ChooseAlternative(context.Background(), first.Suggestions[0])
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, out.State)
	assert.Equal(t, first.Suggestions[0], snaps.appointments[1].Start)
}

// ===============================
// Falha de persistência
// ===============================

func TestMachine_PersistFailureRollsBack(t *testing.T) {
	m, snaps, persist, rec := newTestMachine(t)

	persist.err = &PersistenceError{Code: PersistSlotTaken}

	out, err := m.Propose(context.Background(), 1, at(14, 0))
	require.Error(t, err)

	pe, ok := AsPersistence(err)
	require.True(t, ok)
	assert.Equal(t, PersistSlotTaken, pe.Code)

	assert.Equal(t, StateRolledBack, out.State)
	assert.False(t, m.Coordinator().InFlight(1))
	assert.Equal(t, at(9, 0), snaps.appointments[1].Start)
	assert.Equal(t, []uint{1}, rec.rolledBack)

	// a máquina voltou a Idle: a próxima tentativa entra normalmente
	persist.err = nil
	_, err = m.Propose(context.Background(), 1, at(14, 0))
	assert.NoError(t, err)
}

// ===============================
// Movimentos concorrentes
// ===============================

func TestMachine_SecondMoveRejectedWhileDeciding(t *testing.T) {
	m, _, _, _ := newTestMachine(t)

	_, err := m.Propose(context.Background(), 1, at(10, 15))
	require.NoError(t, err)

	_, err = m.Propose(context.Background(), 1, at(16, 0))
	assert.ErrorIs(t, err, ErrUpdateInProgress)

	_, err = m.Undo(context.Background())
	assert.ErrorIs(t, err, ErrUpdateInProgress)
}

// ===============================
// Validação
// ===============================

func TestMachine_Validation(t *testing.T) {
	m, snaps, _, _ := newTestMachine(t)

	_, err := m.Propose(context.Background(), 99, at(14, 0))
	assert.True(t, IsValidation(err))

	completed := snaps.appointments[2]
	completed.Status = "completed"
	snaps.appointments[2] = completed

	_, err = m.Propose(context.Background(), 2, at(14, 0))
	require.True(t, IsValidation(err))
	assert.Equal(t, "not_movable", err.Error())

	_, err = m.Propose(context.Background(), 1, time.Time{})
	assert.True(t, IsValidation(err))
}

// ===============================
// Desfazer
// ===============================

func TestMachine_UndoWithinWindow(t *testing.T) {
	m, snaps, _, _ := newTestMachine(t)

	_, err := m.Propose(context.Background(), 1, at(14, 0))
	require.NoError(t, err)
	require.Equal(t, at(14, 0), snaps.appointments[1].Start)

	rec, ok := m.UndoAvailable()
	require.True(t, ok)
	assert.Equal(t, uint(1), rec.AppointmentID)
	assert.Equal(t, at(9, 0), rec.PreviousStart)

	out, err := m.Undo(context.Background())
	require.NoError(t, err)

	// desfazer é um movimento normal: passa pelo pipeline e comita
	assert.Equal(t, StateCommitted, out.State)
	assert.Equal(t, at(9, 0), snaps.appointments[1].Start)

	// registro consumido
	_, err = m.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestMachine_UndoAfterExpiryIsNoop(t *testing.T) {
	snaps := newFakeSnapshots()
	persist := &fakePersist{snapshots: snaps}
	m := NewMachine(snaps, persist, Config{UndoWindow: 20 * time.Millisecond})

	_, err := m.Propose(context.Background(), 1, at(14, 0))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := m.UndoAvailable()
		return !ok
	}, time.Second, 10*time.Millisecond)

	_, err = m.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)

	// nada mudou depois da janela
	assert.Equal(t, at(14, 0), snaps.appointments[1].Start)
}

func TestManager_OneMachinePerBarber(t *testing.T) {
	snaps := newFakeSnapshots()
	persist := &fakePersist{snapshots: snaps}
	mgr := NewManager(snaps, persist, Config{})

	assert.Same(t, mgr.ForBarber(5), mgr.ForBarber(5))
	assert.NotSame(t, mgr.ForBarber(5), mgr.ForBarber(6))
	assert.Equal(t, PolicyReject, mgr.Policy())
}
