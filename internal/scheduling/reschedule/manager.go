package reschedule

import "sync"

// PolicyReject: movimento novo enquanto outro está em voo é rejeitado
// com ErrUpdateInProgress; não há fila. Quem chama re-tenta depois que
// a tentativa atual assentar.
const PolicyReject = "reject"

// Manager mantém uma máquina de resolução por barbeiro. Cada barbeiro
// arrasta um agendamento por vez; barbeiros diferentes não disputam.
type Manager struct {
	mu       sync.Mutex
	machines map[uint]*Machine

	snapshots SnapshotSource
	persist   Persistence
	cfg       Config
}

func NewManager(snapshots SnapshotSource, persist Persistence, cfg Config) *Manager {
	return &Manager{
		machines:  make(map[uint]*Machine),
		snapshots: snapshots,
		persist:   persist,
		cfg:       cfg,
	}
}

// ForBarber devolve (criando sob demanda) a máquina do barbeiro.
func (m *Manager) ForBarber(barberID uint) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	machine, ok := m.machines[barberID]
	if !ok {
		machine = NewMachine(m.snapshots, m.persist, m.cfg)
		m.machines[barberID] = machine
	}
	return machine
}

// Policy expõe qual política de concorrência está ativa.
func (m *Manager) Policy() string {
	return PolicyReject
}
