//go:build linux

package evdev

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"Nemo/internal/service/keys"

	evdev "github.com/holoplot/go-evdev"
)

// Run читает события устройства до отмены контекста.
// Нужны права на /dev/input (группа input или root).
func (s *Source) Run(ctx context.Context, out chan<- keys.Event) error {
	path := s.device
	if path == "" {
		p, err := findKeyboard()
		if err != nil {
			return err
		}
		path = p
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return fmt.Errorf("evdev: opening %s: %w", path, err)
	}
	name, _ := dev.Name()
	s.logger.Infow("Keyboard hook started", "source", "evdev", "device", path, "name", name)

	// ReadOne блокируется: закрываем устройство при отмене, чтобы разбудить чтение
	go func() {
		<-ctx.Done()
		_ = dev.Close()
	}()

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return fmt.Errorf("evdev: read %s: %w", path, err)
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		tr, ok := transition(int32(ev.Value))
		if !ok {
			continue
		}
		k := keys.Canonical(ev.CodeName())
		if k == "" {
			continue
		}
		select {
		case out <- keys.Event{Key: k, Transition: tr, At: time.Now()}:
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

// findKeyboard ищет первое устройство с EV_KEY и EV_REP и «keyboard» в имени.
func findKeyboard() (string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", fmt.Errorf("evdev: listing devices: %w", err)
	}
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		types := dev.CapableTypes()
		name, nerr := dev.Name()
		_ = dev.Close()
		if !slices.Contains(types, evdev.EV_KEY) || !slices.Contains(types, evdev.EV_REP) {
			continue
		}
		if nerr != nil || !strings.Contains(strings.ToLower(name), "keyboard") {
			continue
		}
		return p.Path, nil
	}
	return "", errors.New("evdev: keyboard not found (нет прав на /dev/input?)")
}
