// Package robotgo синтезирует нажатия через go-vgo/robotgo.
package robotgo

import (
	"fmt"
	"runtime"
	"time"

	"Nemo/internal/adapter/sink"
	"Nemo/internal/service/rewind"

	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"
)

// Ensure interface compliance
var _ rewind.Sink = (*Sink)(nil)

type Sink struct {
	logger *zap.SugaredLogger
	delay  time.Duration // пауза между нажатиями внутри одного действия
}

func New(logger *zap.SugaredLogger) *Sink {
	return &Sink{logger: logger, delay: 5 * time.Millisecond}
}

func (s *Sink) Apply(a rewind.Action) error {
	for i, st := range sink.PlanLocal(a) {
		if i > 0 && s.delay > 0 {
			time.Sleep(s.delay)
		}
		if err := tap(st); err != nil {
			return fmt.Errorf("robotgo %s: %w", a, err)
		}
	}
	return nil
}

func tap(st sink.Stroke) error {
	if len(st.Mods) == 0 {
		return robotgo.KeyTap(st.Key)
	}
	return robotgo.KeyTap(st.Key, st.Mods)
}

// Type печатает текст в активное окно.
func (s *Sink) Type(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// Copy отправляет сочетание «копировать».
func (s *Sink) Copy() error {
	mod := "ctrl"
	if runtime.GOOS == "darwin" {
		mod = "cmd"
	}
	return robotgo.KeyTap("c", mod)
}
