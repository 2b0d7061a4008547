// Package gohook: кроссплатформенный источник клавиатуры на libuiohook.
package gohook

import (
	"context"
	"errors"
	"time"

	"Nemo/internal/adapter/keyboard"
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/keys"

	hook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// Ensure interface compliance
var _ hotkey.Source = (*Source)(nil)

// Source слушает глобальный хук. В uiohook KeyHold — физическое нажатие
// (повторяется при автоповторе), KeyDown — «напечатанный» символ, KeyUp — отпускание.
type Source struct {
	logger *zap.SugaredLogger
	debug  bool
}

func New(logger *zap.SugaredLogger, debug bool) *Source {
	return &Source{logger: logger, debug: debug}
}

func (s *Source) Run(ctx context.Context, out chan<- keys.Event) error {
	evChan := hook.Start()
	defer hook.End()
	s.logger.Infow("Keyboard hook started", "source", "gohook")

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case ev, ok := <-evChan:
			if !ok {
				return errors.New("gohook: event channel closed")
			}
			var tr keys.Transition
			switch ev.Kind {
			case hook.KeyHold:
				tr = keys.Down
			case hook.KeyUp:
				tr = keys.Up
			default:
				continue
			}
			k := keyboard.FromUiohook(ev.Keycode)
			if k == "" {
				k = keyboard.FromName(hook.RawcodetoKeychar(ev.Rawcode))
			}
			if k == "" {
				if s.debug {
					s.logger.Debugw("Unknown key code", "keycode", ev.Keycode, "rawcode", ev.Rawcode)
				}
				continue
			}
			at := ev.When
			if at.IsZero() {
				at = time.Now()
			}
			select {
			case out <- keys.Event{Key: k, Transition: tr, At: at}:
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		}
	}
}
