package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"Nemo/internal/app/daemon"
	"Nemo/internal/config"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	zcfg := zap.NewDevelopmentConfig()
	if !cfg.DebugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Debugw("Failed to sync logger", "error", err)
		}
	}()

	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("Invalid config", "error", err)
	}
	if err := cfg.CheckGoogleCredentials(); err != nil {
		// без ключа работает всё, кроме озвучки
		sugar.Warnw("TTS credentials problem", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sugar.Infow("Starting app", "DebugMode", cfg.DebugMode)

	d, err := daemon.New(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("Failed to build daemon", "error", err)
	}
	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		sugar.Errorw("Daemon stopped", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	sugar.Infow("Bye")
}
