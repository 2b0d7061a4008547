// nemo-keys печатает сырые события клавиатуры и события хоткеев.
// Помогает подобрать имена клавиш для TTS_KEY, ASSISTANT_KEY и т.п.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Nemo/internal/app/daemon"
	"Nemo/internal/config"
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/keys"

	"go.uber.org/zap"
)

// teeSource печатает каждое сырое событие перед классификацией.
type teeSource struct{ hotkey.Source }

func (t teeSource) Run(ctx context.Context, out chan<- keys.Event) error {
	raw := make(chan keys.Event, 64)
	errCh := make(chan error, 1)
	go func() { errCh <- t.Source.Run(ctx, raw) }()
	for {
		select {
		case err := <-errCh:
			return err
		case ev := <-raw:
			fmt.Printf("[RAW %s] %-4s %q\n", ev.At.Format("15:04:05.000"), ev.Transition, ev.Key)
			select {
			case out <- ev:
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		}
	}
}

func main() {
	cfg := config.NewConfig()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		fmt.Println("конфигурация:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := daemon.NewSource(cfg, sugar)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	bindings := hotkey.DefaultBindings(daemon.Keymap(cfg))
	classifier := hotkey.NewClassifier(bindings, daemon.ClassifierOptions(cfg))
	engine := hotkey.NewEngine(teeSource{src}, classifier, hotkey.NewDispatcher(sugar), nil, sugar, false)

	fmt.Println("Программа запущена, привязки:")
	for _, b := range bindings {
		fmt.Println("  ", b)
	}

	// Потребитель событий — печать в консоль
	go func() {
		for ev := range engine.Events() {
			ts := ev.At.Format("15:04:05.000")
			if ev.Kind == hotkey.KindHoldEnd {
				fmt.Printf("[HOTKEY %s] %s %s held=%s interrupted=%v\n", ts, ev.Kind, ev.Action, ev.Held, ev.Interrupted)
				continue
			}
			fmt.Printf("[HOTKEY %s] %s %s\n", ts, ev.Kind, ev.Action)
		}
	}()

	if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Printf("Источник клавиатуры завершился с ошибкой: %v\n", err)
		os.Exit(1)
	}
}
