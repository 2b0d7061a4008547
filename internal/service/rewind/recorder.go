package rewind

import (
	"Nemo/internal/service/keys"

	"go.uber.org/zap"
)

// Recorder переводит сырые события клавиатуры в записи истории.
// Следит за модификаторами: ctrl+z/ctrl+y становятся отдельными клавишами,
// прочие аккорды (ctrl+c, alt+tab) не запоминаются.
type Recorder struct {
	history *History
	paused  func() bool
	logger  *zap.SugaredLogger
	debug   bool

	held map[keys.Key]struct{}
}

// NewRecorder создаёт рекордер. paused возвращает true, пока идёт перемотка:
// наши же обратные нажатия не должны попадать в историю.
func NewRecorder(h *History, paused func() bool, logger *zap.SugaredLogger, debug bool) *Recorder {
	if paused == nil {
		paused = func() bool { return false }
	}
	return &Recorder{history: h, paused: paused, logger: logger, debug: debug, held: make(map[keys.Key]struct{})}
}

// Observe обрабатывает событие. consumed=true означает, что классификатор забрал
// нажатие как часть хоткея: состояние модификаторов обновляем, но не запоминаем.
// Вызывается только из горутины обработки событий.
func (r *Recorder) Observe(ev keys.Event, consumed bool) {
	k := ev.Key
	if isChordModifier(k) {
		if ev.Transition == keys.Down {
			r.held[k] = struct{}{}
		} else {
			delete(r.held, k)
		}
		return
	}
	if ev.Transition != keys.Down || consumed || r.paused() {
		return
	}

	switch {
	case r.holding(keys.IsCtrl):
		switch k {
		case "z":
			k = keys.CtrlZ
		case "y":
			k = keys.CtrlY
		default:
			return
		}
		if r.holding(keys.IsAlt) || r.holding(keys.IsMeta) {
			return
		}
	case r.holding(keys.IsAlt), r.holding(keys.IsMeta):
		return
	}

	if r.history.Track(k, ev.At) && r.debug {
		r.logger.Debugw("Keystroke tracked", "key", k, "size", r.history.Len())
	}
}

func (r *Recorder) holding(is func(keys.Key) bool) bool {
	for k := range r.held {
		if is(k) {
			return true
		}
	}
	return false
}

func isChordModifier(k keys.Key) bool {
	return keys.IsCtrl(k) || keys.IsAlt(k) || keys.IsMeta(k)
}
