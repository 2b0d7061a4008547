// nemo-say озвучивает текст выбранным TTS сервисом: проверка ключей и голоса.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"Nemo/internal/config"
	"Nemo/internal/service/tts"
	"Nemo/internal/service/tts/player"

	"go.uber.org/zap"
)

func main() {
	text := flag.String("text", "Привет! Я Немо.", "текст для озвучки")
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	if err := cfg.CheckGoogleCredentials(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	synth, err := tts.New(cfg, player.New(), sugar)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeoutCause(context.Background(), 60*time.Second, errors.New("tts timeout"))
	defer cancel()
	if err := synth.Synthesize(ctx, *text); err != nil {
		fmt.Println("ошибка TTS:", err)
		os.Exit(1)
	}
}
