package audit

import "go.uber.org/zap"

// Ações registradas pelo fluxo de remarcação.
const (
	ActionRescheduleProposed = "appointment_reschedule_proposed"
	ActionRescheduled        = "appointment_rescheduled"
	ActionRescheduleRejected = "appointment_reschedule_rejected"
	ActionRescheduleUndone   = "appointment_reschedule_undone"
)

type Event struct {
	BarbershopID uint
	UserID       *uint
	Action       string
	Entity       string
	EntityID     *uint
	Metadata     any
}

type Dispatcher struct {
	logger *Logger
	log    *zap.Logger
	queue  chan Event
}

func NewDispatcher(logger *Logger, zl *zap.Logger) *Dispatcher {
	if zl == nil {
		zl = zap.NewNop()
	}
	d := &Dispatcher{
		logger: logger,
		log:    zl,
		queue:  make(chan Event, 100), // buffer seguro
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if err := d.logger.Log(
			ev.BarbershopID,
			ev.UserID,
			ev.Action,
			ev.Entity,
			ev.EntityID,
			ev.Metadata,
		); err != nil {
			d.log.Error("audit write failed",
				zap.String("action", ev.Action),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
		// enviado
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}
