package appointment

import (
	"time"

	"github.com/c50bossio/6fb-booking-sub003/internal/httperr"
	"github.com/c50bossio/6fb-booking-sub003/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment, now time.Time) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment, now time.Time) error {
	if err := CanMarkNoShow(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusNoShow)
	ap.NoShowAt = &now
	return nil
}

// Reschedule move o agendamento preservando a duração.
// Concluídos e cancelados não saem do lugar.
func Reschedule(ap *models.Appointment, newStart time.Time) error {
	if !IsMovable(Status(ap.Status)) {
		return httperr.ErrBusiness("not_movable")
	}

	duration := ap.EndTime.Sub(ap.StartTime)
	ap.StartTime = newStart
	ap.EndTime = newStart.Add(duration)
	return nil
}
