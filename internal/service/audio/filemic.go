package audio

import (
	"context"
	"time"
)

// FileMicrophone отдаёт заранее записанные сэмплы чанками в темпе реального времени.
// Когда сэмплы кончаются, ждёт отмены контекста, как настоящий микрофон.
type FileMicrophone struct {
	samples    []int16
	sampleRate int
	chunk      time.Duration
}

// NewFileMicrophone читает WAV (PCM16 моно).
func NewFileMicrophone(path string, chunk time.Duration) (*FileMicrophone, error) {
	samples, rate, err := ReadWAV(path)
	if err != nil {
		return nil, err
	}
	return &FileMicrophone{samples: samples, sampleRate: rate, chunk: chunk}, nil
}

func (m *FileMicrophone) SampleRate() int { return m.sampleRate }

// Duration: длина записи.
func (m *FileMicrophone) Duration() time.Duration {
	if m.sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(m.samples)) * time.Second / time.Duration(m.sampleRate)
}

func (m *FileMicrophone) Stream(ctx context.Context, onChunk func(samples []int16) error) error {
	n := max(1, int(int64(m.sampleRate)*int64(m.chunk)/int64(time.Second)))
	var tick <-chan time.Time
	if m.chunk > 0 {
		t := time.NewTicker(m.chunk)
		defer t.Stop()
		tick = t.C
	}
	for off := 0; off < len(m.samples); off += n {
		chunk := m.samples[off:min(off+n, len(m.samples))]
		if err := onChunk(chunk); err != nil {
			return err
		}
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		}
	}
	<-ctx.Done()
	return ctx.Err()
}
