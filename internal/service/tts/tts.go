package tts

import (
	"context"
	"fmt"
	"strings"

	"Nemo/internal/config"
	"Nemo/internal/service/tts/gemini"
	"Nemo/internal/service/tts/google"
	"Nemo/internal/service/tts/player"

	"go.uber.org/zap"
)

// Synthesizer озвучивает текст и возвращается, когда звук доигран или ctx отменён.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}

// New выбирает провайдера по cfg.TTSService.
func New(cfg *config.Config, p player.Player, logger *zap.SugaredLogger) (Synthesizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.TTSService)) {
	case "google":
		return google.New(cfg.GoogleTTS, p, logger), nil
	case "gemini":
		return gemini.New(cfg.GeminiTTS, p, logger), nil
	default:
		return nil, fmt.Errorf("tts: неизвестный сервис %q", cfg.TTSService)
	}
}
