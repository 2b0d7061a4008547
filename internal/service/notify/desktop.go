package notify

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

const appTitle = "Nemo"

// Desktop показывает всплывающие уведомления ОС.
type Desktop struct {
	enabled bool
	send    func(title, message, icon string) error
	logger  *zap.SugaredLogger
}

func NewDesktop(enabled bool, logger *zap.SugaredLogger) *Desktop {
	return &Desktop{enabled: enabled, send: beeep.Notify, logger: logger}
}

// Notify не возвращает ошибку: уведомление не должно ломать обработку хоткея.
func (d *Desktop) Notify(message string) {
	if d == nil || !d.enabled {
		return
	}
	if err := d.send(appTitle, message, ""); err != nil {
		d.logger.Debugw("Desktop notification failed", "error", err)
	}
}
