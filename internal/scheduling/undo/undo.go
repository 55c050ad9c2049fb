// Package undo guarda a última remarcação confirmada numa janela de
// tempo curta, permitindo desfazer o movimento enquanto o toast de
// sucesso está na tela. Um único slot: commit novo sobrescreve o
// anterior e rearma a janela.
package undo

import (
	"sync"
	"time"
)

const DefaultWindow = 5 * time.Second

// Record aponta para onde o agendamento estava antes do commit.
type Record struct {
	AppointmentID uint
	PreviousStart time.Time
	ExpiresAt     time.Time
}

// Manager mantém no máximo um Record, expirado por timer.
type Manager struct {
	mu     sync.Mutex
	rec    *Record
	window time.Duration
	timer  *time.Timer
	now    func() time.Time
}

func NewManager(window time.Duration) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Manager{
		window: window,
		now:    time.Now,
	}
}

// newManagerAt injeta o relógio nos testes
func newManagerAt(window time.Duration, now func() time.Time) *Manager {
	m := NewManager(window)
	m.now = now
	return m
}

// Record registra a remarcação recém-confirmada, sobrescrevendo
// qualquer registro anterior e rearmando a expiração.
func (m *Manager) Record(appointmentID uint, previousStart time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
	}

	m.rec = &Record{
		AppointmentID: appointmentID,
		PreviousStart: previousStart,
		ExpiresAt:     m.now().Add(m.window),
	}

	m.timer = time.AfterFunc(m.window, m.Expire)
}

// Take consome o registro dentro da janela. Depois de expirado, ou sem
// registro, devolve ok == false (desfazer vira no-op).
func (m *Manager) Take() (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rec == nil || m.now().After(m.rec.ExpiresAt) {
		return Record{}, false
	}

	rec := *m.rec
	m.clearLocked()
	return rec, true
}

// Peek devolve o registro vigente sem consumi-lo.
func (m *Manager) Peek() (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rec == nil || m.now().After(m.rec.ExpiresAt) {
		return Record{}, false
	}
	return *m.rec, true
}

// Expire limpa o registro silenciosamente.
func (m *Manager) Expire() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *Manager) clearLocked() {
	m.rec = nil
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
