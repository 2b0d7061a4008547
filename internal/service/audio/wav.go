package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDumper сохраняет записи в WAV (моно, 16 бит) для отладки распознавания.
type WAVDumper struct {
	dir        string
	sampleRate int
}

func NewWAVDumper(dir string, sampleRate int) *WAVDumper {
	return &WAVDumper{dir: dir, sampleRate: sampleRate}
}

// Dump пишет файл <dir>/<время>_<id>.wav.
func (d *WAVDumper) Dump(id string, samples []int16) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s.wav", time.Now().Format("20060102_150405"), id)
	return WriteWAV(filepath.Join(d.dir, name), d.sampleRate, samples)
}

// WriteWAV пишет PCM16 моно в файл.
func WriteWAV(path string, sampleRate int, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("wav write: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("wav close: %w", err)
	}
	return f.Close()
}

// ReadWAV читает PCM16 моно из файла.
func ReadWAV(path string) (samples []int16, sampleRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("wav: неверный файл %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = int16(v)
	}
	return out, int(dec.SampleRate), nil
}
