package hotkey

import (
	"fmt"
	"strings"
	"time"

	"Nemo/internal/service/keys"
)

// ActionName: имя действия, на которое подписываются обработчики.
type ActionName string

// Фиксированный контракт имён действий.
const (
	TTSHoldStart       ActionName = "tts_hold_start"
	TTSHoldEnd         ActionName = "tts_hold_end"
	AssistantHoldStart ActionName = "assistant_hold_start"
	AssistantHoldEnd   ActionName = "assistant_hold_end"
	RewindStart        ActionName = "rewind_start"
	RewindStop         ActionName = "rewind_stop"
	Forward            ActionName = "forward"
)

// KnownActions: все допустимые имена.
var KnownActions = []ActionName{
	TTSHoldStart, TTSHoldEnd,
	AssistantHoldStart, AssistantHoldEnd,
	RewindStart, RewindStop,
	Forward,
}

// Mode: режим привязки.
type Mode int

const (
	Hold Mode = iota + 1
	Tap
)

func (m Mode) String() string {
	switch m {
	case Hold:
		return "hold"
	case Tap:
		return "tap"
	default:
		return "unknown"
	}
}

// Binding связывает клавишу (или пару модификатор+направление) с действиями.
// Start срабатывает на HoldStart/Tap/Combo, End — на HoldEnd.
type Binding struct {
	Keys  []keys.Key
	Mode  Mode
	Start ActionName
	End   ActionName
}

// IsCombo: привязка вида модификатор + клавиша.
func (b Binding) IsCombo() bool { return len(b.Keys) == 2 }

func (b Binding) String() string {
	parts := make([]string, len(b.Keys))
	for i, k := range b.Keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, "+") + " (" + b.Mode.String() + ")"
}

// ComboRelease: когда считается отпущенным комбо.
type ComboRelease string

const (
	ReleaseModifier    ComboRelease = "modifier"
	ReleaseDirectional ComboRelease = "directional"
	ReleaseEither      ComboRelease = "either"
)

// ModifierHold: когда модификатор с собственной одиночной привязкой шлёт HoldStart.
type ModifierHold string

const (
	// HoldStartOnRelease: на отпускании без комбо шлём HoldStart и сразу HoldEnd.
	HoldStartOnRelease ModifierHold = "release"
	// HoldStartOnPress: HoldStart сразу, комбо прерывает удержание (Interrupted).
	HoldStartOnPress ModifierHold = "press"
)

// Options: параметры классификатора.
type Options struct {
	ComboRelease ComboRelease
	ModifierHold ModifierHold
}

// Keymap: набор клавиш, из которого строятся привязки по умолчанию.
type Keymap struct {
	TTS       keys.Key
	Assistant keys.Key
	Rewind    keys.Key
	Forward   keys.Key
}

// DefaultBindings строит стандартный набор:
// TTS: удержание, ассистент — удержание, ассистент+Rewind — перемотка, ассистент+Forward — вперёд.
func DefaultBindings(km Keymap) []Binding {
	return []Binding{
		{Keys: []keys.Key{km.TTS}, Mode: Hold, Start: TTSHoldStart, End: TTSHoldEnd},
		{Keys: []keys.Key{km.Assistant}, Mode: Hold, Start: AssistantHoldStart, End: AssistantHoldEnd},
		{Keys: []keys.Key{km.Assistant, km.Rewind}, Mode: Hold, Start: RewindStart, End: RewindStop},
		{Keys: []keys.Key{km.Assistant, km.Forward}, Mode: Tap, Start: Forward},
	}
}

// Validate проверяет набор привязок.
func Validate(bindings []Binding) error {
	seen := make(map[string]struct{}, len(bindings))
	solo := make(map[keys.Key]struct{})
	for _, b := range bindings {
		if len(b.Keys) == 0 || len(b.Keys) > 2 {
			return fmt.Errorf("binding %v: want 1 or 2 keys", b.Keys)
		}
		for _, k := range b.Keys {
			if k == "" {
				return fmt.Errorf("binding %v: empty key", b.Keys)
			}
		}
		if b.IsCombo() && b.Keys[0] == b.Keys[1] {
			return fmt.Errorf("binding %s: modifier equals key", b)
		}
		if b.Start == "" {
			return fmt.Errorf("binding %s: start action is empty", b)
		}
		id := b.String()
		if _, dup := seen[id]; dup {
			return fmt.Errorf("binding %s: duplicate", b)
		}
		seen[id] = struct{}{}
		if !b.IsCombo() {
			solo[b.Keys[0]] = struct{}{}
		}
	}
	for _, b := range bindings {
		if !b.IsCombo() {
			continue
		}
		if _, ok := solo[b.Keys[1]]; ok {
			return fmt.Errorf("binding %s: combo key %q is also a solo trigger", b, b.Keys[1])
		}
	}
	return nil
}

// Kind: вид события хоткея.
type Kind int

const (
	KindTap Kind = iota + 1
	KindHoldStart
	KindHoldEnd
	KindCombo
)

func (k Kind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindHoldStart:
		return "hold_start"
	case KindHoldEnd:
		return "hold_end"
	case KindCombo:
		return "combo"
	default:
		return "unknown"
	}
}

// Event: событие хоткея. Held заполнен для Tap и HoldEnd.
type Event struct {
	Kind        Kind
	Action      ActionName
	Key         keys.Key
	At          time.Time
	Held        time.Duration
	Interrupted bool
}
