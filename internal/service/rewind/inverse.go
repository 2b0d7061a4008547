package rewind

import (
	"fmt"

	"Nemo/internal/service/keys"
)

// Kind: вид обратного действия.
type Kind int

const (
	NoOp Kind = iota
	Backspace
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	Undo
	Redo
	DeleteN
)

var kindNames = [...]string{
	NoOp:      "noop",
	Backspace: "backspace",
	MoveLeft:  "move_left",
	MoveRight: "move_right",
	MoveUp:    "move_up",
	MoveDown:  "move_down",
	Undo:      "undo",
	Redo:      "redo",
	DeleteN:   "delete_n",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action: примитив, который нужно выполнить, чтобы отменить одно нажатие.
// Count > 0 для всех видов, кроме NoOp.
type Action struct {
	Kind  Kind
	Count int
}

func (a Action) String() string {
	if a.Count > 1 {
		return fmt.Sprintf("%s x%d", a.Kind, a.Count)
	}
	return a.Kind.String()
}

// TabWidth: сколько символов стирает откат Tab.
const TabWidth = 4

// Inverse выводит обратное действие для клавиши. Неизвестные клавиши дают NoOp.
// Таблица статична: никакого состояния.
func Inverse(k keys.Key) Action {
	if keys.IsPrintable(k) {
		return Action{Kind: Backspace, Count: 1}
	}
	switch k {
	case keys.Left:
		return Action{Kind: MoveRight, Count: 1}
	case keys.Right:
		return Action{Kind: MoveLeft, Count: 1}
	case keys.ArrowUp:
		return Action{Kind: MoveDown, Count: 1}
	case keys.ArrowDown:
		return Action{Kind: MoveUp, Count: 1}
	case keys.Backspace, keys.Delete, keys.Enter:
		// удалённый символ неизвестен, поэтому только через undo редактора
		return Action{Kind: Undo, Count: 1}
	case keys.Tab:
		return Action{Kind: DeleteN, Count: TabWidth}
	case keys.CtrlZ:
		return Action{Kind: Redo, Count: 1}
	case keys.CtrlY:
		return Action{Kind: Undo, Count: 1}
	}
	return Action{Kind: NoOp}
}

// Denied сообщает, что клавиша никогда не попадает в историю (Escape, F1..F24).
func Denied(k keys.Key) bool {
	return k == keys.Escape || keys.IsFunction(k)
}
