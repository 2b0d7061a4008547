// Package evdev: источник клавиатуры на Linux через /dev/input. Различает левые и правые модификаторы.
package evdev

import (
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/keys"

	"go.uber.org/zap"
)

// Ensure interface compliance
var _ hotkey.Source = (*Source)(nil)

type Source struct {
	device string
	logger *zap.SugaredLogger
}

// New создаёт источник. device — путь к /dev/input/eventN, пусто — автопоиск.
func New(device string, logger *zap.SugaredLogger) *Source {
	return &Source{device: device, logger: logger}
}

// transition переводит значение EV_KEY: 0 — отпускание, 1 — нажатие, 2 — автоповтор.
// Автоповтор отдаём как Down: классификатор сам его отсеивает.
func transition(value int32) (keys.Transition, bool) {
	switch value {
	case 0:
		return keys.Up, true
	case 1, 2:
		return keys.Down, true
	}
	return 0, false
}
