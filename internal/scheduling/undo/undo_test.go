package undo

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relógio manual para controlar a expiração sem dormir nos testes
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var prevStart = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func TestManager_TakeWithinWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	m := newManagerAt(5*time.Second, clock.Now)

	m.Record(7, prevStart)

	clock.Advance(3 * time.Second)

	rec, ok := m.Take()
	require.True(t, ok)
	assert.Equal(t, uint(7), rec.AppointmentID)
	assert.Equal(t, prevStart, rec.PreviousStart)

	// consumido: segunda tentativa é no-op
	_, ok = m.Take()
	assert.False(t, ok)
}

func TestManager_TakeAfterExpiryIsNoop(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	m := newManagerAt(5*time.Second, clock.Now)

	m.Record(7, prevStart)
	clock.Advance(6 * time.Second)

	_, ok := m.Take()
	assert.False(t, ok)
}

func TestManager_NewCommitOverwritesAndRearms(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	m := newManagerAt(5*time.Second, clock.Now)

	m.Record(7, prevStart)
	clock.Advance(4 * time.Second)

	// novo commit dentro da janela do primeiro: slot único, sobrescreve
	other := prevStart.Add(2 * time.Hour)
	m.Record(8, other)

	clock.Advance(4 * time.Second)

	rec, ok := m.Take()
	require.True(t, ok, "janela rearmada pelo segundo commit")
	assert.Equal(t, uint(8), rec.AppointmentID)
	assert.Equal(t, other, rec.PreviousStart)
}

func TestManager_ExpireClearsSilently(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	m := newManagerAt(5*time.Second, clock.Now)

	m.Record(7, prevStart)
	m.Expire()

	_, ok := m.Peek()
	assert.False(t, ok)
}

func TestManager_EmptyTake(t *testing.T) {
	m := NewManager(0)
	assert.Equal(t, DefaultWindow, m.window)

	_, ok := m.Take()
	assert.False(t, ok)
}

// timer real: janela curtíssima expira sozinha
func TestManager_TimerDrivenExpiry(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	m.Record(7, prevStart)

	assert.Eventually(t, func() bool {
		_, ok := m.Peek()
		return !ok
	}, time.Second, 10*time.Millisecond)
}
