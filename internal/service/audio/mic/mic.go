package mic

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// Microphone пишет моно PCM16 с устройства ввода по умолчанию через PortAudio.
// Требует PortAudio в системе (на Windows — DLL рядом с бинарём или в PATH).
type Microphone struct {
	sampleRate int
	chunkMS    int
	logger     *zap.SugaredLogger
}

func NewMicrophone(sampleRate, chunkMS int, logger *zap.SugaredLogger) *Microphone {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if chunkMS <= 0 {
		chunkMS = 100
	}
	return &Microphone{sampleRate: sampleRate, chunkMS: chunkMS, logger: logger}
}

// SampleRate: частота дискретизации записи.
func (m *Microphone) SampleRate() int { return m.sampleRate }

// frames: сколько сэмплов в одном чанке.
func (m *Microphone) frames() int {
	n := m.sampleRate * m.chunkMS / 1000
	if n < 256 {
		n = 256
	}
	return n
}

// Stream открывает поток и отдаёт чанки в onChunk до отмены контекста.
// Ошибка onChunk прерывает запись.
func (m *Microphone) Stream(ctx context.Context, onChunk func(samples []int16) error) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	buf := make([]int16, m.frames())
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(buf), &buf)
	if err != nil {
		return fmt.Errorf("OpenDefaultStream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("portaudio start: %w", err)
	}
	defer func() { _ = stream.Stop() }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				m.logger.Debugw("Microphone input overflowed")
				continue
			}
			return fmt.Errorf("portaudio read: %w", err)
		}
		chunk := make([]int16, len(buf))
		copy(chunk, buf)
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
}
