package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/speech"
	"Nemo/internal/service/stt"

	"go.uber.org/zap/zaptest"
)

type fakeCapture struct {
	mu      sync.Mutex
	calls   []string
	text    string
	started bool
}

func (c *fakeCapture) Begin(_ context.Context, owner string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "begin:"+owner)
	c.started = true
	return "id", nil
}

func (c *fakeCapture) Finish(owner string, _ time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "finish:"+owner)
	if !c.started {
		return "", stt.ErrNoCapture
	}
	c.started = false
	return c.text, nil
}

func (c *fakeCapture) Abort(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "abort:"+owner)
	c.started = false
}

type fakeTypist struct {
	mu     sync.Mutex
	typed  []string
	copies int
}

func (t *fakeTypist) Type(text string) error {
	t.mu.Lock()
	t.typed = append(t.typed, text)
	t.mu.Unlock()
	return nil
}

func (t *fakeTypist) Copy() error {
	t.mu.Lock()
	t.copies++
	t.mu.Unlock()
	return nil
}

type fakeSpeaker struct {
	mu   sync.Mutex
	said []string
}

func (s *fakeSpeaker) Say(_ context.Context, text string) {
	s.mu.Lock()
	s.said = append(s.said, text)
	s.mu.Unlock()
}

func (s *fakeSpeaker) Hush() {}

type fixture struct {
	voice   *Voice
	capture *fakeCapture
	typist  *fakeTypist
	speaker *fakeSpeaker
	buf     *speech.Speech
	disp    *hotkey.Dispatcher
	done    chan struct{}
}

func newFixture(t *testing.T, clip string, clipErr error) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()
	f := &fixture{
		capture: &fakeCapture{text: " привет мир "},
		typist:  &fakeTypist{},
		speaker: &fakeSpeaker{},
		buf:     speech.New(5),
		disp:    hotkey.NewDispatcher(logger),
		done:    make(chan struct{}),
	}
	opts := Options{TapThreshold: 200 * time.Millisecond, TranscriptTimeout: time.Second, ClipboardSettle: time.Millisecond}
	f.voice = New(opts, f.capture, f.typist, f.speaker, func() (string, error) { return clip, clipErr }, f.buf, nil, logger)
	if err := f.voice.Register(f.disp); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.voice.Run(ctx)
	return f
}

// flush ждёт, пока очередь выполнит всё поставленное до него.
func (f *fixture) flush(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	f.voice.queue.Submit(func(context.Context) { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stuck")
	}
}

func TestHoldDictates(t *testing.T) {
	f := newFixture(t, "", nil)
	f.disp.Dispatch(hotkey.TTSHoldStart, hotkey.Event{Kind: hotkey.KindHoldStart})
	f.disp.Dispatch(hotkey.TTSHoldEnd, hotkey.Event{Kind: hotkey.KindHoldEnd, Held: time.Second})
	f.flush(t)

	if len(f.typist.typed) != 1 || f.typist.typed[0] != "привет мир" {
		t.Fatalf("typed = %v", f.typist.typed)
	}
	if got := f.buf.Recent(0); len(got) != 1 {
		t.Fatalf("transcripts = %v", got)
	}
}

func TestTapReadsSelection(t *testing.T) {
	f := newFixture(t, "выделенный текст", nil)
	f.disp.Dispatch(hotkey.TTSHoldStart, hotkey.Event{Kind: hotkey.KindHoldStart})
	f.disp.Dispatch(hotkey.TTSHoldEnd, hotkey.Event{Kind: hotkey.KindHoldEnd, Held: 50 * time.Millisecond})
	f.flush(t)

	if f.typist.copies != 1 || len(f.typist.typed) != 0 {
		t.Fatalf("copies = %d, typed = %v", f.typist.copies, f.typist.typed)
	}
	if len(f.speaker.said) != 1 || f.speaker.said[0] != "выделенный текст" {
		t.Fatalf("said = %v", f.speaker.said)
	}
	if last := f.capture.calls[len(f.capture.calls)-1]; last != "abort:tts" {
		t.Fatalf("capture calls = %v", f.capture.calls)
	}
}

func TestTapWithEmptyClipboard(t *testing.T) {
	f := newFixture(t, "", errors.New("empty"))
	f.disp.Dispatch(hotkey.TTSHoldEnd, hotkey.Event{Kind: hotkey.KindHoldEnd, Held: time.Millisecond})
	f.flush(t)
	if len(f.speaker.said) != 0 {
		t.Fatalf("said = %v", f.speaker.said)
	}
}

func TestInterruptedHoldAborts(t *testing.T) {
	f := newFixture(t, "", nil)
	f.disp.Dispatch(hotkey.TTSHoldStart, hotkey.Event{Kind: hotkey.KindHoldStart})
	f.disp.Dispatch(hotkey.TTSHoldEnd, hotkey.Event{Kind: hotkey.KindHoldEnd, Held: time.Second, Interrupted: true})
	f.flush(t)
	if len(f.typist.typed) != 0 {
		t.Fatalf("typed = %v", f.typist.typed)
	}
}
