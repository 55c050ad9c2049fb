package appointment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/c50bossio/6fb-booking-sub003/internal/audit"
	"github.com/c50bossio/6fb-booking-sub003/internal/cache"
	"github.com/c50bossio/6fb-booking-sub003/internal/config"
	domain "github.com/c50bossio/6fb-booking-sub003/internal/domain/appointment"
	"github.com/c50bossio/6fb-booking-sub003/internal/domain/schedule"
	"github.com/c50bossio/6fb-booking-sub003/internal/httperr"
	"github.com/c50bossio/6fb-booking-sub003/internal/scheduling/reschedule"
	"github.com/c50bossio/6fb-booking-sub003/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type RescheduleInput struct {
	BarbershopID  uint
	BarberID      uint
	AppointmentID uint

	// novo início no timezone da barbearia
	Date string
	Time string
}

// ======================================================
// USE CASE
// ======================================================

// RescheduleAppointment liga o arrasto do calendário à máquina de
// resolução: valida posse, converte data/hora para o timezone da
// barbearia e repassa o movimento para a máquina do barbeiro.
type RescheduleAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	cache   *cache.Availability
	manager *reschedule.Manager
}

func NewRescheduleAppointment(
	repo domain.Repository,
	auditor *audit.Dispatcher,
	cache *cache.Availability,
	cfg *config.Config,
	log *zap.Logger,
) *RescheduleAppointment {

	snapshots := &snapshotSource{
		repo:             repo,
		defaults:         cfg.Rules,
		defaultThreshold: cfg.RiskThreshold,
	}
	persist := &persistence{repo: repo}

	manager := reschedule.NewManager(snapshots, persist, reschedule.Config{
		UndoWindow:     cfg.UndoWindow,
		MaxSuggestions: cfg.MaxSuggestions,
		Logger:         log,
	})

	return &RescheduleAppointment{
		repo:    repo,
		audit:   auditor,
		cache:   cache,
		manager: manager,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleInput,
) (*reschedule.Outcome, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	newStart, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(shop.Timezone),
	)
	if err != nil {
		return nil, reschedule.ErrValidation("invalid_date_or_time")
	}

	// posse antes de qualquer movimento: o barbeiro só arrasta o que é dele
	ap, err := uc.repo.GetAppointmentForBarber(ctx, in.AppointmentID, in.BarberID)
	if err != nil {
		return nil, reschedule.ErrValidation("appointment_not_found")
	}
	oldStart := ap.StartTime

	machine := uc.manager.ForBarber(in.BarberID)

	out, err := machine.Propose(ctx, in.AppointmentID, newStart)
	if err != nil {
		uc.dispatch(in.BarbershopID, in.BarberID, in.AppointmentID, audit.ActionRescheduleRejected, map[string]any{
			"reason": err.Error(),
		})
		return out, err
	}

	switch out.State {
	case reschedule.StateCommitted:
		uc.afterCommit(ctx, in.BarbershopID, in.BarberID, in.AppointmentID, out, oldStart, newStart)

	case reschedule.StateAwaitingDecision:
		uc.dispatch(in.BarbershopID, in.BarberID, in.AppointmentID, audit.ActionRescheduleProposed, map[string]any{
			"attempt_id": out.AttemptID.String(),
			"risk_score": out.Analysis.RiskScore,
		})
	}

	return out, nil
}

// ======================================================
// DECISÃO PENDENTE
// ======================================================

// ProceedAnyway confirma a remarcação arriscada retida na máquina.
func (uc *RescheduleAppointment) ProceedAnyway(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
) (*reschedule.Outcome, error) {

	machine := uc.manager.ForBarber(barberID)

	out, err := machine.ProceedAnyway(ctx)
	if err != nil {
		return out, err
	}

	if out.State == reschedule.StateCommitted && out.Pending != nil {
		var oldStart time.Time
		if rec, ok := machine.UndoAvailable(); ok {
			oldStart = rec.PreviousStart
		}
		uc.afterCommit(ctx, barbershopID, barberID, out.Pending.AppointmentID, out, oldStart, out.Pending.NewStart)
	}

	return out, nil
}

// Cancel descarta a decisão pendente sem tocar no servidor.
func (uc *RescheduleAppointment) Cancel(barberID uint) error {
	return uc.manager.ForBarber(barberID).Cancel()
}

// ChooseAlternative troca o horário candidato e reanalisa.
func (uc *RescheduleAppointment) ChooseAlternative(
	ctx context.Context,
	in RescheduleInput,
) (*reschedule.Outcome, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	newStart, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(shop.Timezone),
	)
	if err != nil {
		return nil, reschedule.ErrValidation("invalid_date_or_time")
	}

	machine := uc.manager.ForBarber(in.BarberID)

	out, err := machine.ChooseAlternative(ctx, newStart)
	if err != nil {
		return out, err
	}

	if out.State == reschedule.StateCommitted && out.Pending != nil {
		var oldStart time.Time
		if rec, ok := machine.UndoAvailable(); ok {
			oldStart = rec.PreviousStart
		}
		uc.afterCommit(ctx, in.BarbershopID, in.BarberID, out.Pending.AppointmentID, out, oldStart, newStart)
	}

	return out, nil
}

// ======================================================
// UNDO
// ======================================================

// Undo desfaz o último commit dentro da janela, pelo pipeline normal.
func (uc *RescheduleAppointment) Undo(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
) (*reschedule.Outcome, error) {

	machine := uc.manager.ForBarber(barberID)

	// início atual antes do desfazer, para invalidar o dia que esvazia
	var undoneStart time.Time
	if rec, ok := machine.UndoAvailable(); ok {
		if ap, err := uc.repo.GetAppointmentByID(ctx, rec.AppointmentID); err == nil {
			undoneStart = ap.StartTime
		}
	}

	out, err := machine.Undo(ctx)
	if err != nil {
		return out, err
	}

	if out.State == reschedule.StateCommitted && out.Pending != nil {
		appointmentID := out.Pending.AppointmentID
		restoredStart := out.Pending.NewStart

		uc.cache.InvalidateDay(ctx, barberID, restoredStart)
		if !undoneStart.IsZero() {
			uc.cache.InvalidateDay(ctx, barberID, undoneStart)
		}

		uc.dispatch(barbershopID, barberID, appointmentID, audit.ActionRescheduleUndone, map[string]any{
			"attempt_id":     out.AttemptID.String(),
			"restored_start": restoredStart,
		})
	}

	return out, nil
}

// UndoAvailable informa se o barbeiro ainda tem commit desfazível.
func (uc *RescheduleAppointment) UndoAvailable(barberID uint) (time.Time, bool) {
	rec, ok := uc.manager.ForBarber(barberID).UndoAvailable()
	if !ok {
		return time.Time{}, false
	}
	return rec.ExpiresAt, true
}

// ======================================================
// INTERNO
// ======================================================

func (uc *RescheduleAppointment) afterCommit(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
	appointmentID uint,
	out *reschedule.Outcome,
	oldStart time.Time,
	newStart time.Time,
) {
	uc.cache.InvalidateDay(ctx, barberID, newStart)
	if !oldStart.IsZero() {
		uc.cache.InvalidateDay(ctx, barberID, oldStart)
	}

	uc.dispatch(barbershopID, barberID, appointmentID, audit.ActionRescheduled, map[string]any{
		"attempt_id": out.AttemptID.String(),
		"old_start":  oldStart,
		"new_start":  newStart,
	})
}

func (uc *RescheduleAppointment) dispatch(
	barbershopID uint,
	barberID uint,
	appointmentID uint,
	action string,
	metadata map[string]any,
) {
	uc.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       &barberID,
		Action:       action,
		Entity:       "appointment",
		EntityID:     &appointmentID,
		Metadata:     metadata,
	})
}

// ======================================================
// ADAPTERS (portas da máquina → repositório gorm)
// ======================================================

// snapshotSource projeta o repositório no recorte read-only que a
// análise de conflito consome.
type snapshotSource struct {
	repo             domain.Repository
	defaults         schedule.RuleConfig
	defaultThreshold int
}

func (s *snapshotSource) Appointment(ctx context.Context, appointmentID uint) (schedule.Slot, error) {
	ap, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return schedule.Slot{}, reschedule.ErrValidation("appointment_not_found")
		}
		return schedule.Slot{}, err
	}
	return domain.SlotOf(*ap), nil
}

func (s *snapshotSource) DaySlots(ctx context.Context, barberID uint, day time.Time) ([]schedule.Slot, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	aps, err := s.repo.ListAppointmentsForDay(ctx, barberID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return domain.SlotsOf(aps), nil
}

func (s *snapshotSource) DayHours(ctx context.Context, barberID uint, day time.Time) (*schedule.DayHours, error) {
	wh, err := s.repo.GetWorkingHours(ctx, barberID, int(day.Weekday()))
	if err != nil {
		// sem expediente cadastrado: a análise segue só com a janela da loja
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	hours, ok := domain.DayHoursFor(wh, day)
	if !ok {
		return nil, nil
	}
	return hours, nil
}

func (s *snapshotSource) Rules(ctx context.Context, barberID uint) (schedule.RuleConfig, int, error) {
	shop, err := s.repo.GetBarbershopForBarber(ctx, barberID)
	if err != nil {
		return schedule.RuleConfig{}, 0, err
	}

	rules := s.defaults
	if shop.BufferMinutes > 0 {
		rules.BufferMinutes = shop.BufferMinutes
	}
	if shop.WorkDayStart > 0 {
		rules.WorkDayStart = shop.WorkDayStart
	}
	if shop.WorkDayEnd > 0 {
		rules.WorkDayEnd = shop.WorkDayEnd
	}
	rules.AllowAdjacent = shop.AllowAdjacent

	threshold := s.defaultThreshold
	if shop.RiskThreshold > 0 {
		threshold = shop.RiskThreshold
	}

	return rules, threshold, nil
}

// persistence traduz a escrita da máquina para o repositório e as
// falhas do banco para os códigos estruturados da remarcação.
type persistence struct {
	repo domain.Repository
}

func (p *persistence) UpdateAppointmentStart(ctx context.Context, appointmentID uint, newStart time.Time) error {
	ap, err := p.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &reschedule.PersistenceError{Code: reschedule.PersistNotFound, Err: err}
		}
		return &reschedule.PersistenceError{Code: reschedule.PersistServerError, Err: err}
	}

	newEnd := newStart.Add(ap.EndTime.Sub(ap.StartTime))

	err = p.repo.UpdateAppointmentStart(ctx, appointmentID, newStart, newEnd)
	switch {
	case err == nil:
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		return &reschedule.PersistenceError{Code: reschedule.PersistNotFound, Err: err}

	case httperr.IsBusiness(err, "not_movable"):
		return &reschedule.PersistenceError{Code: reschedule.PersistForbidden, Err: err}

	case httperr.IsBusiness(err, "time_conflict"), httperr.IsExclusionConflict(err):
		return &reschedule.PersistenceError{Code: reschedule.PersistSlotTaken, Err: err}

	default:
		return &reschedule.PersistenceError{Code: reschedule.PersistServerError, Err: err}
	}
}
