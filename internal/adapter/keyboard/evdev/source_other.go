//go:build !linux

package evdev

import (
	"context"
	"errors"

	"Nemo/internal/service/keys"
)

func (s *Source) Run(context.Context, chan<- keys.Event) error {
	return errors.New("evdev: source unavailable on this platform")
}
