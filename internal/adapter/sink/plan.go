// Package sink переводит обратные действия перемотки в нажатия клавиш.
package sink

import (
	"runtime"

	"Nemo/internal/service/rewind"
)

// Stroke: одно нажатие клавиши с модификаторами в терминах robotgo.
type Stroke struct {
	Key  string
	Mods []string
}

// Plan раскладывает действие на нажатия. goos влияет на сочетания undo/redo.
func Plan(a rewind.Action, goos string) []Stroke {
	n := a.Count
	if n <= 0 {
		n = 1
	}
	repeat := func(key string) []Stroke {
		out := make([]Stroke, n)
		for i := range out {
			out[i] = Stroke{Key: key}
		}
		return out
	}
	switch a.Kind {
	case rewind.Backspace, rewind.DeleteN:
		return repeat("backspace")
	case rewind.MoveLeft:
		return repeat("left")
	case rewind.MoveRight:
		return repeat("right")
	case rewind.MoveUp:
		return repeat("up")
	case rewind.MoveDown:
		return repeat("down")
	case rewind.Undo:
		if goos == "darwin" {
			return []Stroke{{Key: "z", Mods: []string{"cmd"}}}
		}
		return []Stroke{{Key: "z", Mods: []string{"ctrl"}}}
	case rewind.Redo:
		if goos == "darwin" {
			return []Stroke{{Key: "z", Mods: []string{"cmd", "shift"}}}
		}
		return []Stroke{{Key: "y", Mods: []string{"ctrl"}}}
	}
	return nil
}

// PlanLocal: Plan для текущей ОС.
func PlanLocal(a rewind.Action) []Stroke { return Plan(a, runtime.GOOS) }
