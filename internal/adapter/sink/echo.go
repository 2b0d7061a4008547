package sink

import (
	"Nemo/internal/service/keys"
	"Nemo/internal/service/rewind"
)

// Expecter запоминает нажатия, которые вернутся через хук (hotkey.EchoFilter).
type Expecter interface {
	Expect(k keys.Key)
}

// Ensure interface compliance
var _ rewind.Sink = (*Echoing)(nil)

// Echoing предупреждает фильтр о каждом нажатии до отправки в next.
type Echoing struct {
	next   rewind.Sink
	echoes Expecter
	goos   string
}

func NewEchoing(next rewind.Sink, echoes Expecter) *Echoing {
	return &Echoing{next: next, echoes: echoes}
}

func (s *Echoing) Apply(a rewind.Action) error {
	for _, k := range Keys(a, s.goos) {
		s.echoes.Expect(k)
	}
	return s.next.Apply(a)
}

// Keys: все клавиши, которые нажмёт Plan, включая модификаторы.
// Пустой goos означает текущую ОС.
func Keys(a rewind.Action, goos string) []keys.Key {
	var strokes []Stroke
	if goos == "" {
		strokes = PlanLocal(a)
	} else {
		strokes = Plan(a, goos)
	}
	var out []keys.Key
	for _, st := range strokes {
		for _, m := range st.Mods {
			out = append(out, keys.Canonical(m))
		}
		out = append(out, keys.Canonical(st.Key))
	}
	return out
}
