package hotkey

import (
	"slices"
	"time"

	"Nemo/internal/service/keys"
)

// pressState: состояние удерживаемой отслеживаемой клавиши. Живёт от Down до Up.
type pressState struct {
	key keys.Key
	at  time.Time

	// для модификатора
	combo       *comboState // активное или последнее комбо за это нажатие
	comboUsed   bool        // за нажатие было комбо: одиночное действие подавлено
	soloStarted bool        // HoldStart уже отправлен
	interrupted bool        // удержание прервано комбо

	// для клавиши направления внутри комбо
	directional bool
}

type comboState struct {
	binding  Binding
	modifier keys.Key
	key      keys.Key
	at       time.Time
	ended    bool
}

// Classifier превращает сырые Down/Up в события хоткеев.
// Не потокобезопасен: вызывается только из горутины обработки событий.
type Classifier struct {
	opts   Options
	solo   map[keys.Key]Binding
	combos map[keys.Key]map[keys.Key]Binding // модификатор -> клавиша -> привязка

	pressed  map[keys.Key]*pressState
	modOrder []keys.Key // нажатые модификаторы в порядке нажатия
}

// NewClassifier строит классификатор. Привязки должны пройти Validate.
func NewClassifier(bindings []Binding, opts Options) *Classifier {
	if opts.ComboRelease == "" {
		opts.ComboRelease = ReleaseModifier
	}
	if opts.ModifierHold == "" {
		opts.ModifierHold = HoldStartOnRelease
	}
	c := &Classifier{
		opts:    opts,
		solo:    make(map[keys.Key]Binding),
		combos:  make(map[keys.Key]map[keys.Key]Binding),
		pressed: make(map[keys.Key]*pressState),
	}
	for _, b := range bindings {
		if b.IsCombo() {
			m := c.combos[b.Keys[0]]
			if m == nil {
				m = make(map[keys.Key]Binding)
				c.combos[b.Keys[0]] = m
			}
			m[b.Keys[1]] = b
			continue
		}
		if len(b.Keys) == 1 {
			c.solo[b.Keys[0]] = b
		}
	}
	return c
}

// Triggers возвращает клавиши одиночных привязок и модификаторы комбо.
// Эти клавиши никогда не попадают в историю перемотки.
func (c *Classifier) Triggers() []keys.Key {
	out := make([]keys.Key, 0, len(c.solo)+len(c.combos))
	for k := range c.solo {
		out = append(out, k)
	}
	for k := range c.combos {
		if _, dup := c.solo[k]; !dup {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// Process обрабатывает одно сырое событие. consumed=true — клавиша стала частью
// хоткея (или повтором уже удерживаемой) и не должна попадать в историю.
func (c *Classifier) Process(ev keys.Event) (events []Event, consumed bool) {
	switch ev.Transition {
	case keys.Down:
		return c.down(ev)
	case keys.Up:
		return c.up(ev)
	}
	return nil, false
}

func (c *Classifier) down(ev keys.Event) ([]Event, bool) {
	k := ev.Key
	if _, held := c.pressed[k]; held {
		// автоповтор
		return nil, true
	}

	if mod, b, ok := c.comboFor(k); ok {
		ms := c.pressed[mod]
		var out []Event
		if ms.combo != nil && !ms.combo.ended {
			out = appendEvent(out, c.endCombo(ms.combo, ev.At))
		}
		if ms.soloStarted && !ms.interrupted {
			ms.interrupted = true
			sb := c.solo[mod]
			out = appendEvent(out, Event{Kind: KindHoldEnd, Action: sb.End, Key: mod, At: ev.At, Held: ev.At.Sub(ms.at), Interrupted: true})
		}
		cs := &comboState{binding: b, modifier: mod, key: k, at: ev.At}
		ms.combo = cs
		ms.comboUsed = true
		c.pressed[k] = &pressState{key: k, at: ev.At, combo: cs, directional: true}
		out = append(out, Event{Kind: KindCombo, Action: b.Start, Key: k, At: ev.At})
		return out, true
	}

	b, isSolo := c.solo[k]
	_, isMod := c.combos[k]
	if !isSolo && !isMod {
		return nil, false
	}
	st := &pressState{key: k, at: ev.At}
	c.pressed[k] = st
	if isMod {
		c.modOrder = append(c.modOrder, k)
	}
	if !isSolo || b.Mode != Hold {
		return nil, true
	}
	if isMod && c.opts.ModifierHold != HoldStartOnPress {
		return nil, true
	}
	st.soloStarted = true
	return []Event{{Kind: KindHoldStart, Action: b.Start, Key: k, At: ev.At}}, true
}

func (c *Classifier) up(ev keys.Event) ([]Event, bool) {
	k := ev.Key
	st, ok := c.pressed[k]
	if !ok {
		return nil, false
	}
	delete(c.pressed, k)
	if i := slices.Index(c.modOrder, k); i >= 0 {
		c.modOrder = slices.Delete(c.modOrder, i, i+1)
	}

	if st.directional {
		if !st.combo.ended && c.opts.ComboRelease != ReleaseModifier {
			return appendEvent(nil, c.endCombo(st.combo, ev.At)), true
		}
		return nil, true
	}

	var out []Event
	if st.combo != nil && !st.combo.ended && c.opts.ComboRelease != ReleaseDirectional {
		out = appendEvent(out, c.endCombo(st.combo, ev.At))
	}

	b, isSolo := c.solo[k]
	if !isSolo || st.comboUsed {
		return out, true
	}
	held := ev.At.Sub(st.at)
	switch b.Mode {
	case Tap:
		out = append(out, Event{Kind: KindTap, Action: b.Start, Key: k, At: ev.At, Held: held})
	case Hold:
		if !st.soloStarted {
			out = append(out, Event{Kind: KindHoldStart, Action: b.Start, Key: k, At: st.at})
		}
		out = appendEvent(out, Event{Kind: KindHoldEnd, Action: b.End, Key: k, At: ev.At, Held: held})
	}
	return out, true
}

// comboFor ищет удерживаемый модификатор с привязкой на k. Побеждает последний нажатый.
func (c *Classifier) comboFor(k keys.Key) (keys.Key, Binding, bool) {
	for i := len(c.modOrder) - 1; i >= 0; i-- {
		mod := c.modOrder[i]
		if b, ok := c.combos[mod][k]; ok {
			return mod, b, true
		}
	}
	return "", Binding{}, false
}

func (c *Classifier) endCombo(cs *comboState, at time.Time) Event {
	cs.ended = true
	if cs.binding.End == "" {
		return Event{}
	}
	return Event{Kind: KindHoldEnd, Action: cs.binding.End, Key: cs.key, At: at, Held: at.Sub(cs.at)}
}

// Pressed возвращает отслеживаемые клавиши, которые сейчас удерживаются.
func (c *Classifier) Pressed() []keys.Key {
	out := make([]keys.Key, 0, len(c.pressed))
	for k := range c.pressed {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Reset забывает все удержания, например после переподключения источника.
func (c *Classifier) Reset() {
	clear(c.pressed)
	c.modOrder = c.modOrder[:0]
}

func appendEvent(out []Event, ev Event) []Event {
	if ev.Action == "" {
		return out
	}
	return append(out, ev)
}
