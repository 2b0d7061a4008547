// Package speaker озвучивает ответы. Новая фраза перебивает предыдущую.
package speaker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Synthesizer совпадает с tts.Synthesizer.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}

var errInterrupted = errors.New("speech interrupted")

type Speaker struct {
	synth  Synthesizer
	logger *zap.SugaredLogger

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	done   chan struct{}
}

func New(synth Synthesizer, logger *zap.SugaredLogger) *Speaker {
	return &Speaker{synth: synth, logger: logger}
}

// Say прерывает текущую фразу и начинает новую в фоне.
func (s *Speaker) Say(ctx context.Context, text string) {
	if s.synth == nil || text == "" {
		return
	}
	s.Hush()

	sctx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel(nil)
		if err := s.synth.Synthesize(sctx, text); err != nil && !errors.Is(context.Cause(sctx), errInterrupted) {
			s.logger.Errorw("TTS failed", "error", err)
		}
	}()
}

// Hush обрывает текущую фразу и ждёт остановки.
func (s *Speaker) Hush() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel(errInterrupted)
	<-done
}

// Wait ждёт окончания текущей фразы.
func (s *Speaker) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}
