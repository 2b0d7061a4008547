// Package keyboard переводит коды платформенных хуков в keys.Key.
package keyboard

import (
	"strings"

	"Nemo/internal/service/keys"
)

// uiohook виртуальные коды (VC_*), их отдаёт gohook в Event.Keycode.
var uiohook = map[uint16]keys.Key{
	1:  keys.Escape,
	14: keys.Backspace,
	15: keys.Tab,
	28: keys.Enter,
	57: keys.Space,
	58: keys.CapsLock,

	2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",

	16: "q", 17: "w", 18: "e", 19: "r", 20: "t", 21: "y", 22: "u", 23: "i", 24: "o", 25: "p",
	30: "a", 31: "s", 32: "d", 33: "f", 34: "g", 35: "h", 36: "j", 37: "k", 38: "l",
	44: "z", 45: "x", 46: "c", 47: "v", 48: "b", 49: "n", 50: "m",

	12: "-", 13: "=", 26: "[", 27: "]", 43: "\\", 39: ";", 40: "'", 41: "`", 51: ",", 52: ".", 53: "/",

	59: "f1", 60: "f2", 61: "f3", 62: "f4", 63: "f5", 64: "f6", 65: "f7", 66: "f8", 67: "f9", 68: "f10",
	87: "f11", 88: "f12",

	42:   keys.LeftShift,
	54:   keys.RightShift,
	29:   keys.LeftCtrl,
	3613: keys.RightCtrl,
	56:   keys.LeftAlt,
	3640: keys.RightAlt,
	3675: keys.LeftMeta,
	3676: keys.RightMeta,

	3667:  keys.Delete,
	57416: keys.ArrowUp,
	57419: keys.Left,
	57421: keys.Right,
	57424: keys.ArrowDown,
	3655:  "home",
	3663:  "end",
	3657:  "page up",
	3665:  "page down",
	3666:  "insert",
}

// FromUiohook возвращает клавишу по коду uiohook, "" если код неизвестен.
func FromUiohook(code uint16) keys.Key {
	return uiohook[code]
}

// FromName: запасной путь по текстовому имени (например, из RawcodetoKeychar).
func FromName(name string) keys.Key {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return keys.Canonical(name)
}
