package reschedule

import (
	"errors"
	"fmt"

	"github.com/c50bossio/6fb-booking-sub003/internal/scheduling/optimistic"
)

// ===============================
// Taxonomia de erros da remarcação
// ===============================

// ErrUpdateInProgress: já existe remarcação em voo para o agendamento
// ou uma decisão pendente na máquina. Recuperável pelo chamador.
var ErrUpdateInProgress = optimistic.ErrUpdateInProgress

// ErrNoPendingDecision: proceed/cancel/alternative sem decisão aberta.
var ErrNoPendingDecision = errors.New("reschedule: no decision pending")

// ErrNothingToUndo: janela de desfazer vazia ou expirada (no-op).
var ErrNothingToUndo = errors.New("reschedule: nothing to undo")

// ValidationError: entrada malformada ou agendamento fora de alcance.
// Não recuperável; vira mensagem inline, sem retry.
type ValidationError struct {
	Code string
}

func (e ValidationError) Error() string {
	return e.Code
}

func ErrValidation(code string) error {
	return ValidationError{Code: code}
}

func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ===============================
// Falhas de persistência
// ===============================

// Códigos estruturados da colaboração externa updateAppointment.
const (
	PersistNotFound    = "not_found"
	PersistForbidden   = "forbidden"
	PersistSlotTaken   = "slot_taken"
	PersistServerError = "server_error"
)

// PersistenceError: a chamada de persistência rejeitou a remarcação.
// O overlay otimista já foi desfeito quando este erro sobe, então a
// UI nunca exibe um movimento que não foi persistido.
type PersistenceError struct {
	Code string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reschedule: persistence %s: %v", e.Code, e.Err)
	}
	return "reschedule: persistence " + e.Code
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func AsPersistence(err error) (*PersistenceError, bool) {
	var pe *PersistenceError
	ok := errors.As(err, &pe)
	return pe, ok
}
