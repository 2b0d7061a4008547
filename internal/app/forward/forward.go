// Package forward: заглушка перемотки вперёд. Повтор снятых нажатий не поддерживается.
package forward

import (
	"Nemo/internal/service/hotkey"

	"go.uber.org/zap"
)

// Notifier показывает сообщение пользователю (notify.Desktop).
type Notifier interface {
	Notify(message string)
}

const message = "Перемотка вперёд недоступна"

type Forward struct {
	notifier Notifier
	logger   *zap.SugaredLogger
}

// New создаёт заглушку. notifier может быть nil.
func New(notifier Notifier, logger *zap.SugaredLogger) *Forward {
	return &Forward{notifier: notifier, logger: logger}
}

// Register привязывает forward.
func (f *Forward) Register(d *hotkey.Dispatcher) error {
	return d.Register(hotkey.Forward, f.handle)
}

func (f *Forward) handle(ev hotkey.Event) {
	f.logger.Infow("Forward is not available", "key", ev.Key)
	if f.notifier != nil {
		f.notifier.Notify(message)
	}
}
