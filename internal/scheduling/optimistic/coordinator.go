// Package optimistic centraliza o overlay de remarcações tentativas:
// o calendário reflete o movimento antes da confirmação do servidor e
// o valor original fica guardado para rollback. A invariante de no
// máximo um registro em voo por agendamento é imposta aqui, num
// único lugar, em vez de espalhada pelas telas.
package optimistic

import (
	"errors"
	"sync"
	"time"
)

// ErrUpdateInProgress indica que o agendamento já tem uma remarcação
// em voo. Recuperável: o chamador tenta de novo quando ela assentar.
var ErrUpdateInProgress = errors.New("optimistic: update already in progress for appointment")

// ErrNoRecord indica commit/rollback sem registro correspondente.
var ErrNoRecord = errors.New("optimistic: no update record for appointment")

type record struct {
	original  time.Time
	tentative time.Time
}

// Coordinator mantém o overlay de inícios tentativos por agendamento.
type Coordinator struct {
	mu      sync.Mutex
	records map[uint]record
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		records: make(map[uint]record),
	}
}

// Apply registra {original, tentativo} para o agendamento. Falha com
// ErrUpdateInProgress se já existir registro: verificação de presença,
// não fila. Quem chamou decide se rejeita ou re-tenta.
func (c *Coordinator) Apply(appointmentID uint, original, tentative time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[appointmentID]; exists {
		return ErrUpdateInProgress
	}

	c.records[appointmentID] = record{original: original, tentative: tentative}
	return nil
}

// Commit descarta o registro: o valor tentativo vira verdade local e
// não há mais rollback possível.
func (c *Coordinator) Commit(appointmentID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[appointmentID]; !exists {
		return ErrNoRecord
	}

	delete(c.records, appointmentID)
	return nil
}

// Rollback descarta o registro restaurando o original em todas as
// leituras subsequentes.
func (c *Coordinator) Rollback(appointmentID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[appointmentID]; !exists {
		return ErrNoRecord
	}

	delete(c.records, appointmentID)
	return nil
}

// Effective é a leitura oficial de início de um agendamento possivelmente
// em remarcação: o tentativo quando há registro, senão o valor base.
func (c *Coordinator) Effective(appointmentID uint, ground time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, exists := c.records[appointmentID]; exists {
		return rec.tentative
	}
	return ground
}

// Original devolve o início guardado para rollback, se houver registro.
func (c *Coordinator) Original(appointmentID uint) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.records[appointmentID]
	return rec.original, exists
}

// InFlight informa se o agendamento tem remarcação pendente.
func (c *Coordinator) InFlight(appointmentID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.records[appointmentID]
	return exists
}
