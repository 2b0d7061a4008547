// Package clipboard: текстовый буфер обмена ОС.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrEmpty: в буфере нет текста.
var ErrEmpty = errors.New("clipboard: no text")

// WriteText кладёт текст в буфер обмена.
func WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// ReadText читает текст из буфера обмена.
func ReadText() (string, error) {
	txt, err := readText()
	if err != nil {
		return "", err
	}
	if txt == "" {
		return "", ErrEmpty
	}
	return txt, nil
}
