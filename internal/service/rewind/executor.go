package rewind

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Sink выполняет обратное действие: синтезирует нажатия в активном окне.
type Sink interface {
	Apply(a Action) error
}

// StepResult: результат одного шага перемотки.
type StepResult int

const (
	// Stepped: запись снята, действие отправлено в Sink.
	Stepped StepResult = iota + 1
	// Exhausted: история кончилась, исполнитель вернулся в Idle.
	Exhausted
	// Idle: перемотка не запущена.
	Idle
)

func (r StepResult) String() string {
	switch r {
	case Stepped:
		return "stepped"
	case Exhausted:
		return "exhausted"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// Executor проигрывает историю с конца: Idle -> Rewinding -> Idle.
type Executor struct {
	history *History
	sink    Sink
	logger  *zap.SugaredLogger

	rewinding atomic.Bool
	stepMu    sync.Mutex
	applied   atomic.Int64 // шагов в текущей сессии
}

func NewExecutor(h *History, sink Sink, logger *zap.SugaredLogger) *Executor {
	return &Executor{history: h, sink: sink, logger: logger}
}

// Start переводит в Rewinding. Ничего не делает, если перемотка уже идёт
// или история пуста. Возвращает true, если сессия начата этим вызовом.
func (e *Executor) Start() bool {
	if e.history.Len() == 0 {
		e.logger.Infow("Rewind: history is empty")
		return false
	}
	if !e.rewinding.CompareAndSwap(false, true) {
		return false
	}
	e.applied.Store(0)
	e.logger.Infow("Rewind started", "history", e.history.Len())
	return true
}

// Step снимает самую свежую запись и отправляет её обратное действие в Sink.
// Ошибка Sink логируется, запись считается потраченной.
func (e *Executor) Step() StepResult {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	if !e.rewinding.Load() {
		return Idle
	}
	ks, ok := e.history.Pop()
	if !ok {
		if e.rewinding.CompareAndSwap(true, false) {
			e.logger.Infow("Rewind finished: history exhausted", "applied", e.applied.Load())
		}
		return Exhausted
	}
	if err := e.sink.Apply(ks.Inverse); err != nil {
		e.logger.Warnw("Rewind: sink failed", "action", ks.Inverse.String(), "error", err)
	}
	e.applied.Add(1)
	return Stepped
}

// Stop возвращает в Idle. Можно вызывать в любой момент, уже снятые записи не возвращаются.
func (e *Executor) Stop() {
	if e.rewinding.CompareAndSwap(true, false) {
		e.logger.Infow("Rewind stopped", "applied", e.applied.Load(), "left", e.history.Len())
	}
}

// Active сообщает, идёт ли перемотка.
func (e *Executor) Active() bool { return e.rewinding.Load() }

// Applied: число шагов, выполненных в последней сессии.
func (e *Executor) Applied() int64 { return e.applied.Load() }
