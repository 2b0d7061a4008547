package hotkey

import (
	"context"
	"errors"
	"fmt"

	"Nemo/internal/service/keys"

	"go.uber.org/zap"
)

// ErrSourceStopped: источник клавиатуры завершился без ошибки, слушать больше нечего.
var ErrSourceStopped = errors.New("hotkey: key source stopped")

// Source: платформенный источник сырых событий клавиатуры.
// Run блокируется до отмены контекста или фатальной ошибки.
type Source interface {
	Run(ctx context.Context, out chan<- keys.Event) error
}

// Observer получает каждое сырое событие после классификации (рекордер перемотки).
type Observer interface {
	Observe(ev keys.Event, consumed bool)
}

// Engine: единственная горутина обработки: классификатор, рекордер и диспетчер.
type Engine struct {
	source     Source
	classifier *Classifier
	dispatcher *Dispatcher
	observer   Observer
	logger     *zap.SugaredLogger
	debug      bool
	echoes     *EchoFilter

	// входящие от источника
	in chan keys.Event
	// исходящие события хоткеев для диагностики
	out chan Event
}

func NewEngine(source Source, classifier *Classifier, dispatcher *Dispatcher, observer Observer, logger *zap.SugaredLogger, debug bool) *Engine {
	return &Engine{
		source:     source,
		classifier: classifier,
		dispatcher: dispatcher,
		observer:   observer,
		logger:     logger,
		debug:      debug,
		in:         make(chan keys.Event, 256),
		out:        make(chan Event, 64),
	}
}

// FilterEchoes включает отсев синтезированных нажатий. Вызывать до Run.
func (e *Engine) FilterEchoes(f *EchoFilter) { e.echoes = f }

// Events: копия событий хоткеев. При переполнении события теряются.
func (e *Engine) Events() <-chan Event { return e.out }

// Run запускает источник и обрабатывает события до отмены контекста.
// Ошибка источника фатальна и возвращается вызывающему.
func (e *Engine) Run(ctx context.Context) error {
	srcCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- e.source.Run(srcCtx, e.in) }()

	defer close(e.out)
	e.logger.Infow("Hotkey engine started", "triggers", e.classifier.Triggers())

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case err := <-errCh:
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			// источник мог успеть отдать последние события до выхода
			e.drain()
			if err == nil {
				err = ErrSourceStopped
			}
			return fmt.Errorf("key source: %w", err)
		case ev := <-e.in:
			e.Handle(ev)
		}
	}
}

func (e *Engine) drain() {
	for {
		select {
		case ev := <-e.in:
			e.Handle(ev)
		default:
			return
		}
	}
}

// Handle обрабатывает одно событие синхронно.
func (e *Engine) Handle(ev keys.Event) {
	if ev.Key == "" {
		return
	}
	if e.echoes != nil && e.echoes.Swallow(ev) {
		if e.debug {
			e.logger.Debugw("Synthetic key skipped", "key", ev.Key, "transition", ev.Transition.String())
		}
		return
	}
	events, consumed := e.classifier.Process(ev)
	if e.observer != nil {
		e.observer.Observe(ev, consumed)
	}
	for _, hev := range events {
		if e.debug {
			e.logger.Debugw("Hotkey event", "kind", hev.Kind.String(), "action", hev.Action, "key", hev.Key, "held", hev.Held)
		}
		if hev.Action != "" {
			e.dispatcher.Dispatch(hev.Action, hev)
		}
		e.safeSend(hev)
	}
}

func (e *Engine) safeSend(ev Event) {
	select {
	case e.out <- ev:
	default:
		// никто не читает — дроп, чтобы не блокировать обработку
	}
}
