// Package voice: голосовой ввод: удержание диктует текст в активное окно,
// короткое нажатие зачитывает выделенный текст.
package voice

import (
	"context"
	"errors"
	"strings"
	"time"

	"Nemo/internal/app/jobs"
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/stt"

	"go.uber.org/zap"
)

const owner = "tts"

// Typist печатает в активное окно.
type Typist interface {
	Type(text string) error
	Copy() error
}

// Capture: голосовая запись (stt.Capture).
type Capture interface {
	Begin(ctx context.Context, owner string) (string, error)
	Finish(owner string, timeout time.Duration) (string, error)
	Abort(owner string)
}

// Speaker озвучивает текст в фоне.
type Speaker interface {
	Say(ctx context.Context, text string)
	Hush()
}

// Transcripts хранит распознанные фразы.
type Transcripts interface {
	Add(text string)
}

// Options: пороги фичи.
type Options struct {
	TapThreshold      time.Duration
	TranscriptTimeout time.Duration
	ClipboardSettle   time.Duration // пауза между Ctrl+C и чтением буфера
}

type Voice struct {
	opts        Options
	capture     Capture
	typist      Typist
	speaker     Speaker
	readClip    func() (string, error)
	transcripts Transcripts
	onStart     func(ctx context.Context)
	queue       *jobs.Queue
	logger      *zap.SugaredLogger
}

// New собирает фичу. onStart вызывается в начале записи (звук уведомления), может быть nil.
func New(opts Options, capture Capture, typist Typist, speaker Speaker, readClip func() (string, error),
	transcripts Transcripts, onStart func(ctx context.Context), logger *zap.SugaredLogger,
) *Voice {
	if opts.ClipboardSettle <= 0 {
		opts.ClipboardSettle = 120 * time.Millisecond
	}
	return &Voice{
		opts:        opts,
		capture:     capture,
		typist:      typist,
		speaker:     speaker,
		readClip:    readClip,
		transcripts: transcripts,
		onStart:     onStart,
		queue:       jobs.New("voice", 8, logger),
		logger:      logger,
	}
}

// Run обрабатывает очередь до отмены контекста.
func (v *Voice) Run(ctx context.Context) { v.queue.Run(ctx) }

// Register привязывает tts_hold_start и tts_hold_end.
func (v *Voice) Register(d *hotkey.Dispatcher) error {
	if err := d.Register(hotkey.TTSHoldStart, v.holdStart); err != nil {
		return err
	}
	return d.Register(hotkey.TTSHoldEnd, v.holdEnd)
}

func (v *Voice) holdStart(hotkey.Event) {
	v.queue.Submit(func(ctx context.Context) {
		v.speaker.Hush()
		if v.onStart != nil {
			go v.onStart(ctx)
		}
		if _, err := v.capture.Begin(ctx, owner); err != nil {
			v.logger.Warnw("Voice capture not started", "error", err)
		}
	})
}

func (v *Voice) holdEnd(ev hotkey.Event) {
	v.queue.Submit(func(ctx context.Context) {
		switch {
		case ev.Interrupted:
			v.capture.Abort(owner)
		case ev.Held < v.opts.TapThreshold:
			v.capture.Abort(owner)
			v.readSelection(ctx)
		default:
			v.dictate()
		}
	})
}

func (v *Voice) dictate() {
	text, err := v.capture.Finish(owner, v.opts.TranscriptTimeout)
	if err != nil {
		if !errors.Is(err, stt.ErrNoCapture) {
			v.logger.Errorw("Voice capture failed", "error", err)
		}
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		v.logger.Infow("Nothing recognized")
		return
	}
	v.transcripts.Add(text)
	if err := v.typist.Type(text); err != nil {
		v.logger.Errorw("Failed to type transcript", "error", err)
		return
	}
	v.logger.Infow("Transcript typed", "chars", len([]rune(text)))
}

// readSelection копирует выделение и зачитывает его.
func (v *Voice) readSelection(ctx context.Context) {
	if err := v.typist.Copy(); err != nil {
		v.logger.Errorw("Failed to copy selection", "error", err)
		return
	}
	select {
	case <-ctx.Done():
		return
	case <-time.After(v.opts.ClipboardSettle):
	}
	text, err := v.readClip()
	if err != nil {
		v.logger.Infow("Nothing to read", "error", err)
		return
	}
	v.speaker.Say(ctx, strings.TrimSpace(text))
}
