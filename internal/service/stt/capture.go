package stt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBusy: запись уже идёт (одновременно пишет только одна фича).
	ErrBusy = errors.New("stt: capture already in progress")
	// ErrNoCapture: Finish без активной записи.
	ErrNoCapture = errors.New("stt: no active capture")
)

// Result: гипотеза распознавания.
type Result struct {
	Text  string
	Final bool
	At    time.Time
}

// Recognizer: потоковое распознавание одной записи.
type Recognizer interface {
	Start(ctx context.Context) error
	WritePCM16(samples []int16) error
	// Finish сигналит конец аудио, результаты ещё могут прийти.
	Finish() error
	// Results закрывается, когда распознаватель завершил работу.
	Results() <-chan Result
	Close() error
}

// RecognizerFactory создаёт новый распознаватель на каждую запись.
type RecognizerFactory func() (Recognizer, error)

// Microphone отдаёт чанки PCM16 до отмены контекста.
type Microphone interface {
	Stream(ctx context.Context, onChunk func(samples []int16) error) error
}

// Dumper сохраняет сырые записи (дебаг).
type Dumper interface {
	Dump(id string, samples []int16) error
}

// Capture: единственная активная голосовая запись на процесс.
type Capture struct {
	mic           Microphone
	newRecognizer RecognizerFactory
	dumper        Dumper
	logger        *zap.SugaredLogger

	mu  sync.Mutex
	cur *session
}

type session struct {
	id     string
	owner  string
	cancel context.CancelFunc
	rec    Recognizer

	micDone chan error
	done    chan struct{}

	// пишутся горутиной сбора, читаются после done
	finals  []string
	partial string

	samplesMu sync.Mutex
	samples   []int16
}

// NewCapture создаёт менеджер записей. dumper может быть nil.
func NewCapture(mic Microphone, factory RecognizerFactory, dumper Dumper, logger *zap.SugaredLogger) *Capture {
	return &Capture{mic: mic, newRecognizer: factory, dumper: dumper, logger: logger}
}

// Begin начинает запись от имени owner. Возвращает id сессии.
func (c *Capture) Begin(ctx context.Context, owner string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil {
		return "", ErrBusy
	}

	rec, err := c.newRecognizer()
	if err != nil {
		return "", err
	}
	if err := rec.Start(ctx); err != nil {
		_ = rec.Close()
		return "", err
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &session{
		id:      uuid.NewString(),
		owner:   owner,
		cancel:  cancel,
		rec:     rec,
		micDone: make(chan error, 1),
		done:    make(chan struct{}),
	}
	go s.collect()
	go func() {
		s.micDone <- c.mic.Stream(sctx, func(chunk []int16) error {
			if c.dumper != nil {
				s.samplesMu.Lock()
				s.samples = append(s.samples, chunk...)
				s.samplesMu.Unlock()
			}
			return rec.WritePCM16(chunk)
		})
	}()

	c.cur = s
	c.logger.Infow("Capture started", "id", s.id, "owner", owner)
	return s.id, nil
}

func (s *session) collect() {
	defer close(s.done)
	for r := range s.rec.Results() {
		if r.Final {
			if t := strings.TrimSpace(r.Text); t != "" {
				s.finals = append(s.finals, t)
			}
			s.partial = ""
			continue
		}
		s.partial = strings.TrimSpace(r.Text)
	}
}

func (s *session) transcript() string {
	if len(s.finals) == 0 {
		return s.partial
	}
	return strings.Join(s.finals, " ")
}

// Active сообщает, идёт ли запись, и чья она.
func (c *Capture) Active() (owner string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		return "", false
	}
	return c.cur.owner, true
}

func (c *Capture) take(owner string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.cur
	if s == nil || (owner != "" && s.owner != owner) {
		return nil
	}
	c.cur = nil
	return s
}

// Finish останавливает микрофон и ждёт финальный текст не дольше timeout.
// owner должен совпадать с тем, кто начал запись.
func (c *Capture) Finish(owner string, timeout time.Duration) (string, error) {
	s := c.take(owner)
	if s == nil {
		return "", ErrNoCapture
	}
	s.cancel()
	if err := <-s.micDone; err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warnw("Microphone stopped with error", "id", s.id, "error", err)
	}
	if err := s.rec.Finish(); err != nil {
		c.logger.Debugw("STT finish signal failed", "id", s.id, "error", err)
	}

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.done:
	case <-t.C:
		c.logger.Warnw("Transcript timeout", "id", s.id, "timeout", timeout.String())
	}
	_ = s.rec.Close()
	<-s.done

	c.dump(s)
	text := s.transcript()
	c.logger.Infow("Capture finished", "id", s.id, "owner", s.owner, "chars", len([]rune(text)))
	return text, nil
}

// Abort отменяет запись без ожидания результата.
func (c *Capture) Abort(owner string) {
	s := c.take(owner)
	if s == nil {
		return
	}
	s.cancel()
	<-s.micDone
	_ = s.rec.Close()
	<-s.done
	c.logger.Infow("Capture aborted", "id", s.id, "owner", s.owner)
}

func (c *Capture) dump(s *session) {
	if c.dumper == nil {
		return
	}
	s.samplesMu.Lock()
	samples := s.samples
	s.samplesMu.Unlock()
	if len(samples) == 0 {
		return
	}
	if err := c.dumper.Dump(s.id, samples); err != nil {
		c.logger.Warnw("Audio dump failed", "id", s.id, "error", err)
	}
}
