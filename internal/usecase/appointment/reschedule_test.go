package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/c50bossio/6fb-booking-sub003/internal/audit"
	"github.com/c50bossio/6fb-booking-sub003/internal/cache"
	"github.com/c50bossio/6fb-booking-sub003/internal/config"
	domain "github.com/c50bossio/6fb-booking-sub003/internal/domain/appointment"
	"github.com/c50bossio/6fb-booking-sub003/internal/domain/schedule"
	"github.com/c50bossio/6fb-booking-sub003/internal/httperr"
	"github.com/c50bossio/6fb-booking-sub003/internal/models"
	"github.com/c50bossio/6fb-booking-sub003/internal/scheduling/reschedule"
)

// ======================================================
// FAKE REPOSITORY
// ======================================================

type fakeRepo struct {
	shop         models.Barbershop
	appointments map[uint]*models.Appointment
	hours        map[int]*models.WorkingHours

	updateErr error
}

func newFakeRepo() *fakeRepo {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	return &fakeRepo{
		shop: models.Barbershop{
			ID:            1,
			Timezone:      "UTC",
			BufferMinutes: 15,
			WorkDayStart:  8,
			WorkDayEnd:    20,
			AllowAdjacent: true,
			RiskThreshold: 30,
		},
		appointments: map[uint]*models.Appointment{
			1: {
				ID:        1,
				BarberID:  5,
				StartTime: day.Add(9 * time.Hour),
				EndTime:   day.Add(9*time.Hour + 30*time.Minute),
				Status:    string(domain.StatusConfirmed),
			},
			2: {
				ID:        2,
				BarberID:  5,
				StartTime: day.Add(10 * time.Hour),
				EndTime:   day.Add(10*time.Hour + 30*time.Minute),
				Status:    string(domain.StatusConfirmed),
			},
		},
		hours: map[int]*models.WorkingHours{
			int(day.Weekday()): {
				BarberID:  5,
				Weekday:   int(day.Weekday()),
				StartTime: "08:00",
				EndTime:   "20:00",
				Active:    true,
			},
		},
	}
}

func (f *fakeRepo) GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error) {
	shop := f.shop
	return &shop, nil
}

func (f *fakeRepo) GetBarbershopForBarber(ctx context.Context, barberID uint) (*models.Barbershop, error) {
	shop := f.shop
	return &shop, nil
}

func (f *fakeRepo) GetProduct(ctx context.Context, barbershopID, productID uint) (*models.BarberProduct, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetOrCreateClient(ctx context.Context, barbershopID uint, name, phone, email string) (*models.Client, error) {
	return &models.Client{ID: 1}, nil
}

func (f *fakeRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return nil
}

func (f *fakeRepo) AssertNoTimeConflict(ctx context.Context, barberID uint, start, end time.Time) error {
	return nil
}

func (f *fakeRepo) GetAppointmentByID(ctx context.Context, appointmentID uint) (*models.Appointment, error) {
	ap, ok := f.appointments[appointmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeRepo) GetAppointmentForBarber(ctx context.Context, appointmentID, barberID uint) (*models.Appointment, error) {
	ap, ok := f.appointments[appointmentID]
	if !ok || ap.BarberID != barberID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	f.appointments[ap.ID] = ap
	return nil
}

func (f *fakeRepo) UpdateAppointmentStart(ctx context.Context, appointmentID uint, newStart, newEnd time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	ap, ok := f.appointments[appointmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ap.StartTime = newStart
	ap.EndTime = newEnd
	return nil
}

func (f *fakeRepo) GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	wh, ok := f.hours[weekday]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return wh, nil
}

func (f *fakeRepo) ListAppointmentsForDay(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.BarberID != barberID || ap.Status == string(domain.StatusCancelled) {
			continue
		}
		if !ap.StartTime.Before(start) && ap.StartTime.Before(end) {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) IsWithinWorkingHours(ctx context.Context, barberID uint, start, end time.Time) (bool, error) {
	return true, nil
}

func (f *fakeRepo) ListAppointmentsForPeriod(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	return f.ListAppointmentsForDay(ctx, barberID, start, end)
}

var _ domain.Repository = (*fakeRepo)(nil)

// ======================================================
// HELPERS
// ======================================================

func newRescheduleUC(repo *fakeRepo) *RescheduleAppointment {
	cfg := &config.Config{
		Rules:          schedule.DefaultRules(),
		RiskThreshold:  schedule.RiskThresholdDefault,
		UndoWindow:     5 * time.Second,
		MaxSuggestions: 3,
	}

	// dispatcher sem banco: o logger descarta quando não há conexão
	dispatcher := audit.NewDispatcher(audit.New(nil), nil)

	return NewRescheduleAppointment(
		repo,
		dispatcher,
		cache.NewAvailability(nil, nil),
		cfg,
		nil,
	)
}

// ======================================================
// EXECUTE
// ======================================================

func TestRescheduleExecute_AutoCommitPersists(t *testing.T) {
	repo := newFakeRepo()
	uc := newRescheduleUC(repo)

	out, err := uc.Execute(context.Background(), RescheduleInput{
		BarbershopID:  1,
		BarberID:      5,
		AppointmentID: 1,
		Date:          "2026-03-10",
		Time:          "14:00",
	})

	require.NoError(t, err)
	assert.Equal(t, reschedule.StateCommitted, out.State)

	moved := repo.appointments[1]
	assert.Equal(t, 14, moved.StartTime.Hour())
	assert.Equal(t, 30*time.Minute, moved.EndTime.Sub(moved.StartTime))
}

func TestRescheduleExecute_RiskyAwaitsDecision(t *testing.T) {
	repo := newFakeRepo()
	uc := newRescheduleUC(repo)

	// 10:15 colide com o agendamento 2 (10:00–10:30)
	out, err := uc.Execute(context.Background(), RescheduleInput{
		BarbershopID:  1,
		BarberID:      5,
		AppointmentID: 1,
		Date:          "2026-03-10",
		Time:          "10:15",
	})

	require.NoError(t, err)
	assert.Equal(t, reschedule.StateAwaitingDecision, out.State)
	require.NotNil(t, out.Analysis)
	assert.True(t, out.Analysis.HasConflicts)

	// nada persistido enquanto o usuário decide
	assert.Equal(t, 9, repo.appointments[1].StartTime.Hour())
}

func TestRescheduleExecute_UnknownAppointment(t *testing.T) {
	repo := newFakeRepo()
	uc := newRescheduleUC(repo)

	_, err := uc.Execute(context.Background(), RescheduleInput{
		BarbershopID:  1,
		BarberID:      5,
		AppointmentID: 99,
		Date:          "2026-03-10",
		Time:          "14:00",
	})

	assert.True(t, reschedule.IsValidation(err))
}

func TestRescheduleExecute_WrongBarberIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	uc := newRescheduleUC(repo)

	_, err := uc.Execute(context.Background(), RescheduleInput{
		BarbershopID:  1,
		BarberID:      7,
		AppointmentID: 1,
		Date:          "2026-03-10",
		Time:          "14:00",
	})

	assert.True(t, reschedule.IsValidation(err))
}

// ======================================================
// MAPA DE ERROS DE PERSISTÊNCIA
// ======================================================

func TestPersistenceAdapter_ErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		seed     error
		wantCode string
	}{
		{"conflito de horário vira slot_taken", httperr.ErrBusiness("time_conflict"), reschedule.PersistSlotTaken},
		{"status imóvel vira forbidden", httperr.ErrBusiness("not_movable"), reschedule.PersistForbidden},
		{"erro genérico vira server_error", gorm.ErrInvalidTransaction, reschedule.PersistServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.updateErr = tt.seed

			p := &persistence{repo: repo}
			err := p.UpdateAppointmentStart(context.Background(), 1, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))

			pe, ok := reschedule.AsPersistence(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, pe.Code)
		})
	}
}

func TestPersistenceAdapter_NotFound(t *testing.T) {
	repo := newFakeRepo()

	p := &persistence{repo: repo}
	err := p.UpdateAppointmentStart(context.Background(), 99, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))

	pe, ok := reschedule.AsPersistence(err)
	require.True(t, ok)
	assert.Equal(t, reschedule.PersistNotFound, pe.Code)
}

func TestPersistenceAdapter_PreservesDuration(t *testing.T) {
	repo := newFakeRepo()

	p := &persistence{repo: repo}
	newStart := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	require.NoError(t, p.UpdateAppointmentStart(context.Background(), 1, newStart))

	ap := repo.appointments[1]
	assert.Equal(t, newStart, ap.StartTime)
	assert.Equal(t, newStart.Add(30*time.Minute), ap.EndTime)
}

// ======================================================
// REGRAS POR BARBEARIA
// ======================================================

func TestSnapshotSource_RulesMergeShopOverrides(t *testing.T) {
	repo := newFakeRepo()
	repo.shop.BufferMinutes = 30
	repo.shop.RiskThreshold = 50
	repo.shop.AllowAdjacent = false

	src := &snapshotSource{
		repo:             repo,
		defaults:         schedule.DefaultRules(),
		defaultThreshold: schedule.RiskThresholdDefault,
	}

	rules, threshold, err := src.Rules(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 30, rules.BufferMinutes)
	assert.Equal(t, 50, threshold)
	assert.False(t, rules.AllowAdjacent)
	assert.Equal(t, 8, rules.WorkDayStart)
	assert.Equal(t, 20, rules.WorkDayEnd)
}

func TestSnapshotSource_DayHoursInactive(t *testing.T) {
	repo := newFakeRepo()
	for _, wh := range repo.hours {
		wh.Active = false
	}

	src := &snapshotSource{repo: repo, defaults: schedule.DefaultRules()}

	hours, err := src.DayHours(context.Background(), 5, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, hours)
}
