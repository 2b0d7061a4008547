package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"Nemo/internal/adapter/message"
	"Nemo/internal/app/screenshotter"
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/speech"

	"go.uber.org/zap/zaptest"
)

type stubCapture struct {
	text    string
	aborted int
}

func (c *stubCapture) Begin(context.Context, string) (string, error) { return "id", nil }
func (c *stubCapture) Finish(string, time.Duration) (string, error) { return c.text, nil }
func (c *stubCapture) Abort(string) { c.aborted++ }

type stubAsker struct {
	got   []message.Question
	reply string
	err   error
}

func (a *stubAsker) Ask(_ context.Context, q message.Question) (string, error) {
	a.got = append(a.got, q)
	return a.reply, a.err
}

type stubScreen struct{ err error }

func (s stubScreen) Capture() (screenshotter.Shot, error) {
	return screenshotter.Shot{JPEG: []byte{1, 2}}, s.err
}

type stubSpeaker struct{ said []string }

func (s *stubSpeaker) Say(_ context.Context, text string) { s.said = append(s.said, text) }
func (s *stubSpeaker) Hush() {}

func run(t *testing.T, a *Assistant, events ...hotkey.Event) {
	t.Helper()
	d := hotkey.NewDispatcher(zaptest.NewLogger(t).Sugar())
	if err := a.Register(d); err != nil {
		t.Fatal(err)
	}
	for _, ev := range events {
		d.Dispatch(ev.Action, ev)
	}
	done := make(chan struct{})
	a.queue.Submit(func(context.Context) { close(done) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stuck")
	}
}

var (
	start = hotkey.Event{Kind: hotkey.KindHoldStart, Action: hotkey.AssistantHoldStart}
	end   = hotkey.Event{Kind: hotkey.KindHoldEnd, Action: hotkey.AssistantHoldEnd, Held: time.Second}
)

func TestAssistantAnswers(t *testing.T) {
	answers := speech.New(5)
	answers.Add("прошлый ответ")
	asker := &stubAsker{reply: "ответ"}
	sp := &stubSpeaker{}
	var notified []string
	a := New(Options{Prompt: "коротко", HistoryHeader: "история:", Screenshot: true},
		&stubCapture{text: "вопрос"}, asker, stubScreen{}, answers, sp,
		func(_ context.Context, s string) { notified = append(notified, s) }, zaptest.NewLogger(t).Sugar())

	run(t, a, start, end)

	if len(asker.got) != 1 {
		t.Fatalf("asked %d times", len(asker.got))
	}
	q := asker.got[0]
	if q.Text != "вопрос" || q.System != "коротко" || q.History != "история:\n- прошлый ответ" || len(q.JPEG) != 2 {
		t.Fatalf("question = %+v", q)
	}
	if len(sp.said) != 1 || sp.said[0] != "ответ" || len(notified) != 1 {
		t.Fatalf("said = %v, notified = %v", sp.said, notified)
	}
	if answers.Len() != 2 {
		t.Fatalf("answers = %d", answers.Len())
	}
}

func TestAssistantScreenshotFailureStillAsks(t *testing.T) {
	asker := &stubAsker{reply: "ok"}
	a := New(Options{Screenshot: true}, &stubCapture{text: "вопрос"}, asker, stubScreen{err: errors.New("no display")},
		speech.New(1), &stubSpeaker{}, nil, zaptest.NewLogger(t).Sugar())
	run(t, a, start, end)
	if len(asker.got) != 1 || asker.got[0].JPEG != nil {
		t.Fatalf("got = %+v", asker.got)
	}
}

func TestAssistantInterruptedByCombo(t *testing.T) {
	capture := &stubCapture{text: "вопрос"}
	asker := &stubAsker{}
	a := New(Options{}, capture, asker, nil, speech.New(1), &stubSpeaker{}, nil, zaptest.NewLogger(t).Sugar())
	interrupted := end
	interrupted.Interrupted = true
	run(t, a, start, interrupted)
	if capture.aborted != 1 || len(asker.got) != 0 {
		t.Fatalf("aborted = %d, asked = %d", capture.aborted, len(asker.got))
	}
}

func TestAssistantEmptyQuestionOrError(t *testing.T) {
	asker := &stubAsker{err: errors.New("boom")}
	sp := &stubSpeaker{}
	a := New(Options{}, &stubCapture{text: "  "}, asker, nil, speech.New(1), sp, nil, zaptest.NewLogger(t).Sugar())
	run(t, a, start, end)
	if len(asker.got) != 0 {
		t.Fatal("empty question must not be sent")
	}

	a = New(Options{}, &stubCapture{text: "вопрос"}, asker, nil, speech.New(1), sp, nil, zaptest.NewLogger(t).Sugar())
	run(t, a, start, end)
	if len(sp.said) != 0 {
		t.Fatalf("said = %v", sp.said)
	}
}
