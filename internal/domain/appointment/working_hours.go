package appointment

import (
	"time"

	"github.com/c50bossio/6fb-booking-sub003/internal/domain/schedule"
	"github.com/c50bossio/6fb-booking-sub003/internal/models"
)

// DayHoursFor resolve o expediente do barbeiro (incluindo pausa de
// almoço) para o dia informado, no formato que a análise de conflito
// consome. Retorna false quando o barbeiro não atende nesse dia.
func DayHoursFor(wh *models.WorkingHours, day time.Time) (*schedule.DayHours, bool) {
	if wh == nil || !wh.Active {
		return nil, false
	}

	dh, ok := schedule.ResolveDayHours(day, wh.StartTime, wh.EndTime, wh.LunchStart, wh.LunchEnd)
	if !ok {
		return nil, false
	}

	return &dh, true
}

// SlotOf projeta o agendamento no recorte imutável usado pela análise.
func SlotOf(ap models.Appointment) schedule.Slot {
	return schedule.Slot{
		ID:       ap.ID,
		BarberID: ap.BarberID,
		Start:    ap.StartTime,
		End:      ap.EndTime,
		Status:   ap.Status,
	}
}

// SlotsOf converte a lista do snapshot do dia.
func SlotsOf(aps []models.Appointment) []schedule.Slot {
	out := make([]schedule.Slot, 0, len(aps))
	for _, ap := range aps {
		out = append(out, SlotOf(ap))
	}
	return out
}
