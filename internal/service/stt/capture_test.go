package stt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type fakeMic struct{ chunks [][]int16 }

func (m *fakeMic) Stream(ctx context.Context, onChunk func([]int16) error) error {
	for _, ch := range m.chunks {
		if err := onChunk(ch); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

type fakeRecognizer struct {
	mu       sync.Mutex
	written  int
	finals   []string
	results  chan Result
	closeOne sync.Once
	silent   bool // не отдавать результат на Finish
}

func newFakeRecognizer(finals ...string) *fakeRecognizer {
	return &fakeRecognizer{finals: finals, results: make(chan Result, 8)}
}

func (r *fakeRecognizer) Start(context.Context) error { return nil }

func (r *fakeRecognizer) WritePCM16(s []int16) error {
	r.mu.Lock()
	r.written += len(s)
	r.mu.Unlock()
	return nil
}

func (r *fakeRecognizer) Finish() error {
	if r.silent {
		return nil
	}
	r.results <- Result{Text: "черно", Final: false}
	for _, f := range r.finals {
		r.results <- Result{Text: f, Final: true}
	}
	r.closeOne.Do(func() { close(r.results) })
	return nil
}

func (r *fakeRecognizer) Results() <-chan Result { return r.results }

func (r *fakeRecognizer) Close() error {
	r.closeOne.Do(func() { close(r.results) })
	return nil
}

type memDumper struct{ got map[string]int }

func (d *memDumper) Dump(id string, samples []int16) error {
	d.got[id] = len(samples)
	return nil
}

func TestCaptureTranscript(t *testing.T) {
	rec := newFakeRecognizer("привет", " мир ")
	dumper := &memDumper{got: map[string]int{}}
	mic := &fakeMic{chunks: [][]int16{{1, 2, 3}, {4, 5}}}
	c := NewCapture(mic, func() (Recognizer, error) { return rec, nil }, dumper, zaptest.NewLogger(t).Sugar())

	id, err := c.Begin(context.Background(), "tts")
	if err != nil {
		t.Fatal(err)
	}
	if owner, ok := c.Active(); !ok || owner != "tts" {
		t.Fatalf("Active = %q, %v", owner, ok)
	}
	if _, err := c.Begin(context.Background(), "assistant"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Begin = %v, want ErrBusy", err)
	}
	// даём микрофону отдать чанки
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec.mu.Lock()
		n := rec.written
		rec.mu.Unlock()
		if n == 5 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	text, err := c.Finish("tts", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if text != "привет мир" {
		t.Fatalf("transcript = %q", text)
	}
	if dumper.got[id] != 5 {
		t.Fatalf("dumped %d samples, want 5", dumper.got[id])
	}
	if _, ok := c.Active(); ok {
		t.Fatal("capture must be released")
	}
}

func TestCaptureFinishWrongOwner(t *testing.T) {
	rec := newFakeRecognizer("x")
	c := NewCapture(&fakeMic{}, func() (Recognizer, error) { return rec, nil }, nil, zaptest.NewLogger(t).Sugar())
	if _, err := c.Begin(context.Background(), "assistant"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Finish("tts", time.Second); !errors.Is(err, ErrNoCapture) {
		t.Fatalf("Finish by other owner = %v, want ErrNoCapture", err)
	}
	c.Abort("assistant")
	if _, ok := c.Active(); ok {
		t.Fatal("Abort must release capture")
	}
}

func TestCaptureTimeoutKeepsPartial(t *testing.T) {
	rec := newFakeRecognizer()
	rec.silent = true
	rec.results <- Result{Text: "недоговор", Final: false}
	c := NewCapture(&fakeMic{}, func() (Recognizer, error) { return rec, nil }, nil, zaptest.NewLogger(t).Sugar())
	if _, err := c.Begin(context.Background(), "tts"); err != nil {
		t.Fatal(err)
	}
	text, err := c.Finish("tts", 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if text != "недоговор" {
		t.Fatalf("transcript = %q, want partial", text)
	}
}

func TestCaptureFactoryError(t *testing.T) {
	boom := errors.New("no key")
	c := NewCapture(&fakeMic{}, func() (Recognizer, error) { return nil, boom }, nil, zaptest.NewLogger(t).Sugar())
	if _, err := c.Begin(context.Background(), "tts"); !errors.Is(err, boom) {
		t.Fatalf("Begin = %v", err)
	}
	if _, ok := c.Active(); ok {
		t.Fatal("failed Begin must not hold capture")
	}
}
