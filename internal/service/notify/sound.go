package notify

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"Nemo/internal/service/tts/player"

	"go.uber.org/zap"
)

// SoundNotifier проигрывает короткие звуки-уведомления.
type SoundNotifier struct {
	logger  *zap.SugaredLogger
	pathAI  string
	pathTTS string
	ply     player.Player
}

// NewSoundNotifier создаёт нотификатор. Пустой путь отключает соответствующий звук.
// Относительные пути сначала ищутся рядом с бинарём.
func NewSoundNotifier(p player.Player, logger *zap.SugaredLogger, pathAI, pathTTS string) *SoundNotifier {
	return &SoundNotifier{
		logger:  logger,
		pathAI:  resolve(pathAI),
		pathTTS: resolve(pathTTS),
		ply:     p,
	}
}

func resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if exe, err := os.Executable(); err == nil {
		cand := filepath.Join(filepath.Dir(exe), p)
		if _, statErr := os.Stat(cand); statErr == nil {
			return cand
		}
	}
	return filepath.FromSlash(p)
}

func (n *SoundNotifier) play(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := context.Cause(ctx); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		n.logger.Warnw("Не удалось открыть звуковой файл уведомления", "path", path, "error", err)
		return err
	}
	defer f.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		ext = "mp3"
	}
	if err := n.ply.Play(ctx, ext, f); err != nil {
		n.logger.Warnw("Не удалось воспроизвести звуковое уведомление", "path", path, "error", err)
		return err
	}
	return nil
}

// PlayAI проигрывает звук перед ответом ассистента.
func (n *SoundNotifier) PlayAI(ctx context.Context) error { return n.play(ctx, n.pathAI) }

// PlayTTS проигрывает звук начала записи.
func (n *SoundNotifier) PlayTTS(ctx context.Context) error { return n.play(ctx, n.pathTTS) }
