package optimistic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	original  = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	tentative = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
)

func TestCoordinator_ApplyOverlaysReads(t *testing.T) {
	c := NewCoordinator()

	// sem registro, leitura devolve o valor base
	assert.Equal(t, original, c.Effective(1, original))
	assert.False(t, c.InFlight(1))

	require.NoError(t, c.Apply(1, original, tentative))

	assert.True(t, c.InFlight(1))
	assert.Equal(t, tentative, c.Effective(1, original))

	got, ok := c.Original(1)
	require.True(t, ok)
	assert.Equal(t, original, got)
}

func TestCoordinator_SecondApplyRejected(t *testing.T) {
	c := NewCoordinator()

	require.NoError(t, c.Apply(1, original, tentative))

	err := c.Apply(1, original, tentative.Add(time.Hour))
	assert.ErrorIs(t, err, ErrUpdateInProgress)

	// outro agendamento não é afetado pela presença do primeiro
	assert.NoError(t, c.Apply(2, original, tentative))
}

// Propriedade de ida e volta: apply + rollback restaura exatamente o
// valor anterior ao movimento.
func TestCoordinator_RollbackRestoresOriginal(t *testing.T) {
	c := NewCoordinator()

	require.NoError(t, c.Apply(1, original, tentative))
	require.NoError(t, c.Rollback(1))

	assert.Equal(t, original, c.Effective(1, original))
	assert.False(t, c.InFlight(1))
}

// Commit é seguro para reuso: remove o registro e um apply posterior
// para o mesmo id volta a ser aceito.
func TestCoordinator_CommitClearsRecord(t *testing.T) {
	c := NewCoordinator()

	require.NoError(t, c.Apply(1, original, tentative))
	require.NoError(t, c.Commit(1))

	assert.False(t, c.InFlight(1))
	assert.NoError(t, c.Apply(1, tentative, tentative.Add(time.Hour)))
}

func TestCoordinator_CommitRollbackWithoutRecord(t *testing.T) {
	c := NewCoordinator()

	assert.ErrorIs(t, c.Commit(99), ErrNoRecord)
	assert.ErrorIs(t, c.Rollback(99), ErrNoRecord)
}
