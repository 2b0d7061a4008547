// nemo-stt распознаёт WAV файл (mono PCM16) через Yandex SpeechKit
// тем же путём, что и голосовой ввод демона.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Nemo/internal/config"
	"Nemo/internal/service/audio"
	"Nemo/internal/service/stt"
	"Nemo/internal/service/stt/yandex"

	"go.uber.org/zap"
)

func main() {
	wavPath := flag.String("wav", "", "путь к WAV файлу для псевдореалтайм-стрима")
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	if *wavPath == "" {
		fmt.Println("укажите -wav")
		os.Exit(2)
	}
	chunk := time.Duration(cfg.YandexSTT.ChunkMS) * time.Millisecond
	mic, err := audio.NewFileMicrophone(*wavPath, chunk)
	if err != nil {
		fmt.Println("не удалось прочитать WAV:", err)
		os.Exit(1)
	}
	cfg.YandexSTT.SampleRate = mic.SampleRate()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	capture := stt.NewCapture(mic, yandex.Factory(cfg.YandexSTT, sugar), nil, sugar)
	if _, err := capture.Begin(ctx, "cli"); err != nil {
		fmt.Println("не удалось начать распознавание:", err)
		os.Exit(1)
	}

	// ждём, пока файл «проиграется» целиком
	select {
	case <-ctx.Done():
		capture.Abort("cli")
		return
	case <-time.After(mic.Duration() + chunk):
	}

	text, err := capture.Finish("cli", cfg.TranscriptTimeout)
	if err != nil {
		fmt.Println("ошибка распознавания:", err)
		os.Exit(1)
	}
	fmt.Printf("Текст пойман: %s\n", text)
}
