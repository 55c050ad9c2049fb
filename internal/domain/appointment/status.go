package appointment

import "github.com/c50bossio/6fb-booking-sub003/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// ===============================
// Validations
// ===============================

// CanConfirm define se um agendamento pendente pode ser confirmado
func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanCancel define se um agendamento pode ser cancelado
func CanCancel(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete define se um agendamento pode ser concluído
func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanMarkNoShow define se o cliente pode ser marcado como falta
func CanMarkNoShow(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// IsMovable define se o agendamento ainda pode ser arrastado no calendário
func IsMovable(current Status) bool {
	return current != StatusCompleted && current != StatusCancelled
}

// status inicial de agendamento criado pelo barbeiro
func InitialPrivateStatus() Status {
	return StatusConfirmed
}

// status inicial de agendamento criado pelo cliente (link público)
func InitialPublicStatus() Status {
	return StatusPending
}
