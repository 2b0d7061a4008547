// Package assistant: удержание клавиши ассистента: вопрос голосом,
// скриншот экрана, ответ ИИ вслух.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"Nemo/internal/adapter/message"
	"Nemo/internal/app/jobs"
	"Nemo/internal/app/screenshotter"
	"Nemo/internal/app/voice"
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/speech"
	"Nemo/internal/service/stt"

	"go.uber.org/zap"
)

const owner = "assistant"

var errTimeout = errors.New("assistant request timeout")

// Asker отправляет вопрос модели.
type Asker interface {
	Ask(ctx context.Context, q message.Question) (string, error)
}

// Screen снимает экран.
type Screen interface {
	Capture() (screenshotter.Shot, error)
}

// Options: параметры запроса.
type Options struct {
	Prompt            string
	HistoryHeader     string
	Screenshot        bool
	Timeout           time.Duration
	TranscriptTimeout time.Duration
}

type Assistant struct {
	opts    Options
	capture voice.Capture
	asker   Asker
	screen  Screen
	answers *speech.Speech
	speaker voice.Speaker
	// notify вызывается перед озвучкой ответа, может быть nil
	notify func(ctx context.Context, answer string)
	queue  *jobs.Queue
	logger *zap.SugaredLogger
}

func New(opts Options, capture voice.Capture, asker Asker, screen Screen, answers *speech.Speech,
	speaker voice.Speaker, notify func(ctx context.Context, answer string), logger *zap.SugaredLogger,
) *Assistant {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Assistant{
		opts:    opts,
		capture: capture,
		asker:   asker,
		screen:  screen,
		answers: answers,
		speaker: speaker,
		notify:  notify,
		queue:   jobs.New("assistant", 8, logger),
		logger:  logger,
	}
}

func (a *Assistant) Run(ctx context.Context) { a.queue.Run(ctx) }

// Register привязывает assistant_hold_start и assistant_hold_end.
func (a *Assistant) Register(d *hotkey.Dispatcher) error {
	if err := d.Register(hotkey.AssistantHoldStart, a.holdStart); err != nil {
		return err
	}
	return d.Register(hotkey.AssistantHoldEnd, a.holdEnd)
}

func (a *Assistant) holdStart(hotkey.Event) {
	a.queue.Submit(func(ctx context.Context) {
		a.speaker.Hush()
		if _, err := a.capture.Begin(ctx, owner); err != nil {
			a.logger.Warnw("Assistant capture not started", "error", err)
		}
	})
}

func (a *Assistant) holdEnd(ev hotkey.Event) {
	a.queue.Submit(func(ctx context.Context) {
		if ev.Interrupted {
			// клавиша ушла в комбо
			a.capture.Abort(owner)
			return
		}
		a.answer(ctx)
	})
}

func (a *Assistant) answer(ctx context.Context) {
	text, err := a.capture.Finish(owner, a.opts.TranscriptTimeout)
	if err != nil {
		if !errors.Is(err, stt.ErrNoCapture) {
			a.logger.Errorw("Assistant capture failed", "error", err)
		}
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.logger.Infow("Empty question, skip")
		return
	}

	q := message.Question{
		System:  a.opts.Prompt,
		History: a.answers.Block(a.opts.HistoryHeader),
		Text:    text,
	}
	if a.opts.Screenshot && a.screen != nil {
		shot, err := a.screen.Capture()
		if err != nil {
			a.logger.Warnw("Screenshot failed, asking without image", "error", err)
		} else {
			q.JPEG = shot.JPEG
		}
	}

	reqCtx, cancel := context.WithTimeoutCause(ctx, a.opts.Timeout, errTimeout)
	defer cancel()
	reply, err := a.asker.Ask(reqCtx, q)
	if err != nil {
		a.logger.Errorw("Assistant request failed", "error", err, "cause", context.Cause(reqCtx))
		return
	}
	if reply == "" {
		return
	}
	a.answers.Add(reply)
	a.logger.Infow("Assistant answered", "question", text, "answer", reply)
	if a.notify != nil {
		a.notify(ctx, reply)
	}
	a.speaker.Say(ctx, reply)
}
