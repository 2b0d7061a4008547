package keys

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Key: каноническое имя клавиши в нижнем регистре: "a", "space", "left", "right shift", "ctrl+z".
type Key string

// Именованные клавиши, которые нужны ядру.
const (
	Space      Key = "space"
	Left       Key = "left"
	Right      Key = "right"
	ArrowUp    Key = "up"
	ArrowDown  Key = "down"
	Backspace  Key = "backspace"
	Delete     Key = "delete"
	Enter      Key = "enter"
	Tab        Key = "tab"
	Escape     Key = "escape"
	Shift      Key = "shift"
	LeftShift  Key = "left shift"
	RightShift Key = "right shift"
	Ctrl       Key = "ctrl"
	LeftCtrl   Key = "left ctrl"
	RightCtrl  Key = "right ctrl"
	Alt        Key = "alt"
	LeftAlt    Key = "left alt"
	RightAlt   Key = "right alt"
	Meta       Key = "meta"
	LeftMeta   Key = "left meta"
	RightMeta  Key = "right meta"
	CapsLock   Key = "caps lock"

	// Аккорды отмены/повтора, которые учитываются историей как отдельные клавиши.
	CtrlZ Key = "ctrl+z"
	CtrlY Key = "ctrl+y"
)

// Transition: направление события клавиши.
type Transition int

const (
	Down Transition = iota + 1
	Up
)

func (t Transition) String() string {
	switch t {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// Event: сырое событие от источника клавиатуры. Значение неизменяемо.
type Event struct {
	Key        Key
	Transition Transition
	At         time.Time
}

func (k Key) String() string { return string(k) }

// aliases приводит имена разных источников к каноническому виду.
// Лево/право схлопываются только если источник сам их не различает.
var aliases = map[string]Key{
	" ":           Space,
	"spacebar":    Space,
	"arrow left":  Left,
	"arrow right": Right,
	"arrow up":    ArrowUp,
	"arrow down":  ArrowDown,
	"leftarrow":   Left,
	"rightarrow":  Right,
	"uparrow":     ArrowUp,
	"downarrow":   ArrowDown,
	"del":         Delete,
	"return":      Enter,
	"esc":         Escape,
	"back":        Backspace,

	"shift right": RightShift,
	"rshift":      RightShift,
	"shift_r":     RightShift,
	"rightshift":  RightShift,
	"shift left":  LeftShift,
	"lshift":      LeftShift,
	"shift_l":     LeftShift,
	"leftshift":   LeftShift,

	"alt right":    RightAlt,
	"ralt":         RightAlt,
	"alt_r":        RightAlt,
	"alt gr":       RightAlt,
	"altgr":        RightAlt,
	"rightalt":     RightAlt,
	"alt left":     LeftAlt,
	"lalt":         LeftAlt,
	"alt_l":        LeftAlt,
	"leftalt":      LeftAlt,
	"option":       Alt,
	"ctrl right":   RightCtrl,
	"rctrl":        RightCtrl,
	"ctrl_r":       RightCtrl,
	"rightctrl":    RightCtrl,
	"ctrl left":    LeftCtrl,
	"lctrl":        LeftCtrl,
	"ctrl_l":       LeftCtrl,
	"leftctrl":     LeftCtrl,
	"cmd":          Meta,
	"command":      Meta,
	"super":        Meta,
	"win":          Meta,
	"leftmeta":     LeftMeta,
	"rightmeta":    RightMeta,
	"capslock":     CapsLock,

	"control":       Ctrl,
	"right control": RightCtrl,
	"left control":  LeftCtrl,
}

// Canonical приводит имя клавиши источника к Key.
// Понимает evdev-имена вида KEY_RIGHTSHIFT.
func Canonical(name string) Key {
	if name == " " {
		return Space
	}
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "key_") {
		n = strings.TrimPrefix(n, "key_")
		if k, ok := evdevNames[n]; ok {
			return k
		}
	}
	if k, ok := aliases[n]; ok {
		return k
	}
	n = strings.Join(strings.Fields(n), " ")
	if k, ok := aliases[n]; ok {
		return k
	}
	return Key(n)
}

// evdevNames: имена evdev без префикса KEY_, отличающиеся от канонических.
var evdevNames = map[string]Key{
	"space":      Space,
	"minus":      "-",
	"equal":      "=",
	"leftbrace":  "[",
	"rightbrace": "]",
	"backslash":  "\\",
	"semicolon":  ";",
	"apostrophe": "'",
	"grave":      "`",
	"comma":      ",",
	"dot":        ".",
	"slash":      "/",
	"enter":      Enter,
	"kpenter":    Enter,
	"esc":        Escape,
	"backspace":  Backspace,
	"delete":     Delete,
	"tab":        Tab,
	"left":       Left,
	"right":      Right,
	"up":         ArrowUp,
	"down":       ArrowDown,
	"leftshift":  LeftShift,
	"rightshift": RightShift,
	"leftctrl":   LeftCtrl,
	"rightctrl":  RightCtrl,
	"leftalt":    LeftAlt,
	"rightalt":   RightAlt,
	"leftmeta":   LeftMeta,
	"rightmeta":  RightMeta,
	"capslock":   CapsLock,
}

// IsPrintable сообщает, печатает ли клавиша один символ (буквы, цифры, пунктуация, пробел).
func IsPrintable(k Key) bool {
	if k == Space {
		return true
	}
	if utf8.RuneCountInString(string(k)) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(string(k))
	return unicode.IsPrint(r) && !unicode.IsSpace(r)
}

// IsCtrl, IsAlt, IsMeta, IsShift учитывают обе стороны и нерасличённый вариант.
func IsCtrl(k Key) bool  { return k == Ctrl || k == LeftCtrl || k == RightCtrl }
func IsAlt(k Key) bool   { return k == Alt || k == LeftAlt || k == RightAlt }
func IsMeta(k Key) bool  { return k == Meta || k == LeftMeta || k == RightMeta }
func IsShift(k Key) bool { return k == Shift || k == LeftShift || k == RightShift }

// IsFunction сообщает, является ли клавиша F1..F24.
func IsFunction(k Key) bool {
	s := string(k)
	if len(s) < 2 || len(s) > 3 || s[0] != 'f' {
		return false
	}
	n := 0
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= 1 && n <= 24
}
