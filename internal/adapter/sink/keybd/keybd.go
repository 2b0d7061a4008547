// Package keybd синтезирует нажатия через micmonay/keybd_event.
// На Linux нужен доступ к /dev/uinput.
package keybd

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"Nemo/internal/adapter/sink"
	"Nemo/internal/service/clipboard"
	"Nemo/internal/service/rewind"

	"github.com/micmonay/keybd_event"
	"go.uber.org/zap"
)

// Ensure interface compliance
var _ rewind.Sink = (*Sink)(nil)

var vk = map[string]int{
	"backspace": keybd_event.VK_BACKSPACE,
	"left":      keybd_event.VK_LEFT,
	"right":     keybd_event.VK_RIGHT,
	"up":        keybd_event.VK_UP,
	"down":      keybd_event.VK_DOWN,
	"z":         keybd_event.VK_Z,
	"y":         keybd_event.VK_Y,
	"c":         keybd_event.VK_C,
	"v":         keybd_event.VK_V,
}

type Sink struct {
	mu     sync.Mutex
	kb     keybd_event.KeyBonding
	logger *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) (*Sink, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("keybd: %w", err)
	}
	if runtime.GOOS == "linux" {
		// uinput регистрирует устройство не сразу
		time.Sleep(2 * time.Second)
	}
	return &Sink{kb: kb, logger: logger}, nil
}

func (s *Sink) press(st sink.Stroke) error {
	code, ok := vk[st.Key]
	if !ok {
		return fmt.Errorf("keybd: no key code for %q", st.Key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kb.Clear()
	// keybd_event знает только ctrl/shift: cmd на macOS заменяем на ctrl
	s.kb.HasCTRL(slices.Contains(st.Mods, "ctrl") || slices.Contains(st.Mods, "cmd"))
	s.kb.HasSHIFT(slices.Contains(st.Mods, "shift"))
	s.kb.SetKeys(code)
	return s.kb.Launching()
}

func (s *Sink) Apply(a rewind.Action) error {
	for _, st := range sink.PlanLocal(a) {
		if err := s.press(st); err != nil {
			return err
		}
	}
	return nil
}

// Type вставляет текст через буфер обмена и Ctrl+V, затем возвращает старое содержимое.
func (s *Sink) Type(text string) error {
	orig, _ := clipboard.ReadText()
	if err := clipboard.WriteText(text); err != nil {
		return err
	}
	time.Sleep(80 * time.Millisecond)
	if err := s.press(sink.Stroke{Key: "v", Mods: []string{"ctrl"}}); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	if orig != "" {
		_ = clipboard.WriteText(orig)
	}
	return nil
}

// Copy отправляет Ctrl+C.
func (s *Sink) Copy() error {
	return s.press(sink.Stroke{Key: "c", Mods: []string{"ctrl"}})
}
