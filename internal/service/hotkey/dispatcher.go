package hotkey

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ErrUnknownAction: имя действия вне фиксированного контракта.
var ErrUnknownAction = errors.New("hotkey: unknown action name")

// Handler: обработчик действия. Вызывается синхронно в горутине обработки событий,
// долгую работу обработчик уводит в свою горутину.
type Handler func(ev Event)

// Dispatcher хранит таблицу обработчиков по имени действия.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[ActionName]Handler
	logger   *zap.SugaredLogger
}

func NewDispatcher(logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{handlers: make(map[ActionName]Handler), logger: logger}
}

// Register ставит обработчик, перезаписывая предыдущий. Неизвестное имя не регистрируется.
func (d *Dispatcher) Register(name ActionName, h Handler) error {
	if !slices.Contains(KnownActions, name) {
		d.logger.Warnw("Register: unknown action", "action", name)
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if h == nil {
		delete(d.handlers, name)
		return nil
	}
	if _, ok := d.handlers[name]; ok {
		d.logger.Debugw("Handler replaced", "action", name)
	}
	d.handlers[name] = h
	return nil
}

// Dispatch вызывает обработчик действия. Нет обработчика — тихо ничего не делаем.
// Паника обработчика перехватывается и логируется.
func (d *Dispatcher) Dispatch(name ActionName, ev Event) {
	d.mu.RLock()
	h, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorw("Handler panicked", "action", name, "kind", ev.Kind.String(), "panic", r)
		}
	}()
	h(ev)
}

// Registered сообщает, есть ли обработчик для имени.
func (d *Dispatcher) Registered(name ActionName) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[name]
	return ok
}
