package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/c50bossio/6fb-booking-sub003/internal/httperr"
	"github.com/c50bossio/6fb-booking-sub003/internal/middleware"
	"github.com/c50bossio/6fb-booking-sub003/internal/scheduling/reschedule"
	ucAppointment "github.com/c50bossio/6fb-booking-sub003/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

// RescheduleHandler expõe o arrasto do calendário: proposta, decisão
// pendente (proceed / cancel / alternative) e desfazer.
type RescheduleHandler struct {
	rescheduleUC *ucAppointment.RescheduleAppointment
}

func NewRescheduleHandler(rescheduleUC *ucAppointment.RescheduleAppointment) *RescheduleHandler {
	return &RescheduleHandler{rescheduleUC: rescheduleUC}
}

// ======================================================
// REQUESTS
// ======================================================

type RescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// ======================================================
// HELPERS
// ======================================================

func writeRescheduleError(c *gin.Context, err error) {
	if pe, ok := reschedule.AsPersistence(err); ok {
		switch pe.Code {
		case reschedule.PersistNotFound:
			httperr.NotFound(c, "appointment_not_found", "Agendamento não encontrado.")
		case reschedule.PersistForbidden:
			httperr.Forbidden(c, "forbidden", "Permissão negada.")
		case reschedule.PersistSlotTaken:
			httperr.Conflict(c, "slot_taken", "Horário não está mais disponível.")
		default:
			httperr.Internal(c, "server_error", "Erro no servidor, tente novamente.")
		}
		return
	}

	switch {
	case errors.Is(err, reschedule.ErrUpdateInProgress):
		httperr.Conflict(c, "update_in_progress", "Já existe uma remarcação em andamento.")

	case errors.Is(err, reschedule.ErrNoPendingDecision):
		httperr.BadRequest(c, "no_pending_decision", "Nenhuma decisão pendente.")

	case errors.Is(err, reschedule.ErrNothingToUndo):
		httperr.BadRequest(c, "nothing_to_undo", "Nada para desfazer.")

	case reschedule.IsValidation(err):
		var ve reschedule.ValidationError
		errors.As(err, &ve)
		if ve.Code == "appointment_not_found" {
			httperr.NotFound(c, ve.Code, "Agendamento não encontrado.")
			return
		}
		httperr.BadRequest(c, ve.Code, "Remarcação inválida.")

	default:
		httperr.Internal(c, "server_error", "Erro no servidor, tente novamente.")
	}
}

// ======================================================
// PROPOSE
// ======================================================

func (h *RescheduleHandler) Propose(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	out, err := h.rescheduleUC.Execute(c.Request.Context(), ucAppointment.RescheduleInput{
		BarbershopID:  barbershopID,
		BarberID:      barberID,
		AppointmentID: id,
		Date:          req.Date,
		Time:          req.Time,
	})
	if err != nil {
		writeRescheduleError(c, err)
		return
	}

	c.JSON(200, out)
}

// ======================================================
// DECISÃO PENDENTE
// ======================================================

func (h *RescheduleHandler) Proceed(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	out, err := h.rescheduleUC.ProceedAnyway(c.Request.Context(), barbershopID, barberID)
	if err != nil {
		writeRescheduleError(c, err)
		return
	}

	c.JSON(200, out)
}

func (h *RescheduleHandler) Cancel(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	if err := h.rescheduleUC.Cancel(barberID); err != nil {
		writeRescheduleError(c, err)
		return
	}

	c.JSON(200, gin.H{"state": reschedule.StateIdle})
}

func (h *RescheduleHandler) ChooseAlternative(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	out, err := h.rescheduleUC.ChooseAlternative(c.Request.Context(), ucAppointment.RescheduleInput{
		BarbershopID: barbershopID,
		BarberID:     barberID,
		Date:         req.Date,
		Time:         req.Time,
	})
	if err != nil {
		writeRescheduleError(c, err)
		return
	}

	c.JSON(200, out)
}

// ======================================================
// UNDO
// ======================================================

func (h *RescheduleHandler) Undo(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)
	barbershopID := c.MustGet(middleware.ContextBarbershopID).(uint)

	out, err := h.rescheduleUC.Undo(c.Request.Context(), barbershopID, barberID)
	if err != nil {
		writeRescheduleError(c, err)
		return
	}

	c.JSON(200, out)
}

func (h *RescheduleHandler) UndoAvailable(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	expiresAt, ok := h.rescheduleUC.UndoAvailable(barberID)
	if !ok {
		c.JSON(200, gin.H{"available": false})
		return
	}

	c.JSON(200, gin.H{
		"available":  true,
		"expires_at": expiresAt,
	})
}
