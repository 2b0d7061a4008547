//go:build windows

package clipboard

import (
	"errors"
	"syscall"

	"github.com/lxn/win"
)

// readText читает CF_UNICODETEXT напрямую через WinAPI.
func readText() (string, error) {
	if !win.IsClipboardFormatAvailable(win.CF_UNICODETEXT) {
		return "", nil
	}
	if !win.OpenClipboard(0) {
		return "", errors.New("clipboard: OpenClipboard failed")
	}
	defer win.CloseClipboard()
	h := win.HGLOBAL(win.GetClipboardData(win.CF_UNICODETEXT))
	if h == 0 {
		return "", nil
	}
	p := win.GlobalLock(h)
	if p == nil {
		return "", errors.New("clipboard: GlobalLock failed")
	}
	defer win.GlobalUnlock(h)
	// нуль-терминированная UTF-16 строка, не больше 1М символов
	u16 := (*[1 << 20]uint16)(p)
	n := 0
	for n < len(u16) && u16[n] != 0 {
		n++
	}
	return syscall.UTF16ToString(u16[:n]), nil
}
