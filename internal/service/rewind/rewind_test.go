package rewind

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Nemo/internal/service/keys"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	got  []Action
	fail map[int]error // номер вызова -> ошибка
}

func (s *recordingSink) Apply(a Action) error {
	s.got = append(s.got, a)
	if err, ok := s.fail[len(s.got)]; ok {
		return err
	}
	return nil
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	return zaptest.NewLogger(t).Sugar()
}

func trackAll(h *History, ks ...keys.Key) {
	at := time.Unix(0, 0)
	for i, k := range ks {
		h.Track(k, at.Add(time.Duration(i)*time.Millisecond))
	}
}

func keysOf(ks []Keystroke) []keys.Key {
	out := make([]keys.Key, len(ks))
	for i, k := range ks {
		out[i] = k.Key
	}
	return out
}

func equalKeys(a, b []keys.Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInverse(t *testing.T) {
	tests := []struct {
		key  keys.Key
		want Action
	}{
		{"a", Action{Kind: Backspace, Count: 1}},
		{"5", Action{Kind: Backspace, Count: 1}},
		{",", Action{Kind: Backspace, Count: 1}},
		{keys.Space, Action{Kind: Backspace, Count: 1}},
		{keys.Left, Action{Kind: MoveRight, Count: 1}},
		{keys.Right, Action{Kind: MoveLeft, Count: 1}},
		{keys.ArrowUp, Action{Kind: MoveDown, Count: 1}},
		{keys.ArrowDown, Action{Kind: MoveUp, Count: 1}},
		{keys.Backspace, Action{Kind: Undo, Count: 1}},
		{keys.Delete, Action{Kind: Undo, Count: 1}},
		{keys.Enter, Action{Kind: Undo, Count: 1}},
		{keys.Tab, Action{Kind: DeleteN, Count: 4}},
		{keys.CtrlZ, Action{Kind: Redo, Count: 1}},
		{keys.CtrlY, Action{Kind: Undo, Count: 1}},
		{keys.RightShift, Action{Kind: NoOp}},
		{keys.Escape, Action{Kind: NoOp}},
		{"home", Action{Kind: NoOp}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := Inverse(tt.key); got != tt.want {
				t.Errorf("Inverse(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestInverseLeftRightAreMutual(t *testing.T) {
	if Inverse(keys.Left).Kind != MoveRight || Inverse(keys.Right).Kind != MoveLeft {
		t.Fatal("left/right inverses are not mutual")
	}
	if Inverse(keys.ArrowUp).Kind != MoveDown || Inverse(keys.ArrowDown).Kind != MoveUp {
		t.Fatal("up/down inverses are not mutual")
	}
}

func TestHistoryTrackSkips(t *testing.T) {
	h := NewHistory(10, keys.RightShift, keys.RightAlt)
	for _, k := range []keys.Key{keys.RightShift, keys.RightAlt, keys.Escape, "f1", "f5", "f12", "home", keys.LeftShift, ""} {
		if h.Track(k, time.Now()) {
			t.Errorf("Track(%q) = true, want skipped", k)
		}
	}
	if h.Len() != 0 {
		t.Fatalf("Len = %d, want 0", h.Len())
	}
}

func TestHistoryExcludesConfiguredTrigger(t *testing.T) {
	h := NewHistory(10, "q")
	if h.Track("q", time.Now()) {
		t.Fatal("trigger key must not be tracked")
	}
	if !h.Track("w", time.Now()) {
		t.Fatal("plain key must be tracked")
	}
}

func TestHistoryFIFOEviction(t *testing.T) {
	const capacity = 5
	h := NewHistory(capacity)
	seq := []keys.Key{"a", "b", "c", "d", "e", "f", "g", "h"}
	trackAll(h, seq...)

	if h.Len() != capacity {
		t.Fatalf("Len = %d, want %d", h.Len(), capacity)
	}
	got := keysOf(h.Recent(capacity))
	if want := seq[len(seq)-capacity:]; !equalKeys(got, want) {
		t.Fatalf("Recent = %v, want %v", got, want)
	}
}

func TestHistoryRecentAndClear(t *testing.T) {
	h := NewHistory(0)
	if h.Cap() != DefaultCapacity {
		t.Fatalf("Cap = %d, want %d", h.Cap(), DefaultCapacity)
	}
	trackAll(h, "x", "y", "z")
	if got := keysOf(h.Recent(2)); !equalKeys(got, []keys.Key{"y", "z"}) {
		t.Fatalf("Recent(2) = %v", got)
	}
	if got := h.Recent(10); len(got) != 3 {
		t.Fatalf("Recent(10) len = %d, want 3", len(got))
	}
	if got := h.Recent(0); got != nil {
		t.Fatalf("Recent(0) = %v, want nil", got)
	}
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("Len after Clear = %d", h.Len())
	}
	if _, ok := h.Pop(); ok {
		t.Fatal("Pop on empty history returned ok")
	}
}

func TestHistoryPopAfterWrap(t *testing.T) {
	h := NewHistory(3)
	trackAll(h, "a", "b", "c", "d", "e")
	var got []keys.Key
	for {
		ks, ok := h.Pop()
		if !ok {
			break
		}
		got = append(got, ks.Key)
	}
	if !equalKeys(got, []keys.Key{"e", "d", "c"}) {
		t.Fatalf("pops = %v", got)
	}
	trackAll(h, "k")
	if got := keysOf(h.Recent(5)); !equalKeys(got, []keys.Key{"k"}) {
		t.Fatalf("after refill Recent = %v", got)
	}
}

func TestExecutorRewindsInReverseOrder(t *testing.T) {
	h := NewHistory(10)
	trackAll(h, "a", keys.Tab, keys.Left, keys.Enter)
	sink := &recordingSink{}
	e := NewExecutor(h, sink, testLogger(t))

	if !e.Start() {
		t.Fatal("Start returned false")
	}
	for e.Step() == Stepped {
	}
	want := []Action{
		{Kind: Undo, Count: 1},
		{Kind: MoveRight, Count: 1},
		{Kind: DeleteN, Count: 4},
		{Kind: Backspace, Count: 1},
	}
	if len(sink.got) != len(want) {
		t.Fatalf("applied %v, want %v", sink.got, want)
	}
	for i := range want {
		if sink.got[i] != want[i] {
			t.Errorf("step %d: got %v, want %v", i, sink.got[i], want[i])
		}
	}
	if e.Active() {
		t.Fatal("executor must return to idle after exhaustion")
	}
	if e.Applied() != 4 {
		t.Fatalf("Applied = %d, want 4", e.Applied())
	}
}

func TestExecutorStartIsIdempotent(t *testing.T) {
	h := NewHistory(10)
	trackAll(h, "a", "b")
	sink := &recordingSink{}
	e := NewExecutor(h, sink, testLogger(t))

	if !e.Start() {
		t.Fatal("first Start returned false")
	}
	if e.Start() {
		t.Fatal("second Start must be a no-op")
	}
	if !e.Active() {
		t.Fatal("executor must stay rewinding")
	}
	if len(sink.got) != 0 || h.Len() != 2 {
		t.Fatalf("Start must not apply anything: applied=%d len=%d", len(sink.got), h.Len())
	}
}

func TestExecutorStartOnEmptyHistory(t *testing.T) {
	e := NewExecutor(NewHistory(3), &recordingSink{}, testLogger(t))
	if e.Start() {
		t.Fatal("Start on empty history must be a no-op")
	}
	if e.Active() {
		t.Fatal("executor must stay idle")
	}
	if got := e.Step(); got != Idle {
		t.Fatalf("Step = %v, want idle", got)
	}
}

func TestExecutorStopKeepsRemainder(t *testing.T) {
	h := NewHistory(10)
	trackAll(h, "a", "b", "c")
	sink := &recordingSink{}
	e := NewExecutor(h, sink, testLogger(t))

	e.Start()
	if got := e.Step(); got != Stepped {
		t.Fatalf("Step = %v", got)
	}
	e.Stop()
	e.Stop()
	if got := e.Step(); got != Idle {
		t.Fatalf("Step after Stop = %v, want idle", got)
	}
	if got := keysOf(h.Recent(10)); !equalKeys(got, []keys.Key{"a", "b"}) {
		t.Fatalf("remaining = %v", got)
	}
}

func TestExecutorSinkFailureContinues(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHistory(10)
	trackAll(h, "a", "b", "c")
	sink := &recordingSink{fail: map[int]error{1: errors.New("injection denied")}}
	e := NewExecutor(h, sink, zap.New(core).Sugar())

	e.Start()
	for e.Step() == Stepped {
	}
	if len(sink.got) != 3 {
		t.Fatalf("sink called %d times, want 3", len(sink.got))
	}
	if h.Len() != 0 {
		t.Fatalf("failed entry must be consumed, Len = %d", h.Len())
	}
	if logs.FilterMessage("Rewind: sink failed").Len() != 1 {
		t.Fatalf("expected one sink failure log, got %v", logs.All())
	}
}

func TestCapacityThreeScenario(t *testing.T) {
	h := NewHistory(3)
	trackAll(h, "a", "b", "c", "d")
	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}
	sink := &recordingSink{}
	e := NewExecutor(h, sink, testLogger(t))
	e.Start()

	var popped []keys.Key
	for {
		before := h.Recent(1)
		if e.Step() != Stepped {
			break
		}
		popped = append(popped, before[0].Key)
	}
	if !equalKeys(popped, []keys.Key{"d", "c", "b"}) {
		t.Fatalf("rewind order = %v, want [d c b]", popped)
	}
	for _, a := range sink.got {
		if a != (Action{Kind: Backspace, Count: 1}) {
			t.Fatalf("unexpected action %v", a)
		}
	}
}

func TestRecorder(t *testing.T) {
	type step struct {
		key      keys.Key
		tr       keys.Transition
		consumed bool
	}
	down := func(k keys.Key) step { return step{key: k, tr: keys.Down} }
	up := func(k keys.Key) step { return step{key: k, tr: keys.Up} }

	tests := []struct {
		name  string
		steps []step
		want  []keys.Key
	}{
		{"plain typing", []step{down("h"), up("h"), down("i"), up("i")}, []keys.Key{"h", "i"}},
		{"undo chord", []step{down(keys.LeftCtrl), down("z"), up("z"), up(keys.LeftCtrl)}, []keys.Key{keys.CtrlZ}},
		{"redo chord", []step{down(keys.RightCtrl), down("y")}, []keys.Key{keys.CtrlY}},
		{"copy chord skipped", []step{down(keys.LeftCtrl), down("c"), up(keys.LeftCtrl), down("v")}, []keys.Key{"v"}},
		{"alt chord skipped", []step{down(keys.LeftAlt), down(keys.Tab), up(keys.LeftAlt), down(keys.Tab)}, []keys.Key{keys.Tab}},
		{"shift does not block", []step{down(keys.LeftShift), down("a")}, []keys.Key{"a"}},
		{"consumed skipped", []step{{key: keys.Left, tr: keys.Down, consumed: true}, down(keys.Left)}, []keys.Key{keys.Left}},
		{"consumed modifier still held", []step{{key: keys.RightAlt, tr: keys.Down, consumed: true}, down("x"), {key: keys.RightAlt, tr: keys.Up, consumed: true}, down("y")}, []keys.Key{"y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(10)
			r := NewRecorder(h, nil, testLogger(t), true)
			for _, s := range tt.steps {
				r.Observe(keys.Event{Key: s.key, Transition: s.tr, At: time.Now()}, s.consumed)
			}
			if got := keysOf(h.Recent(10)); !equalKeys(got, tt.want) {
				t.Fatalf("tracked %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecorderPausedWhileRewinding(t *testing.T) {
	h := NewHistory(10)
	paused := true
	r := NewRecorder(h, func() bool { return paused }, testLogger(t), false)
	r.Observe(keys.Event{Key: keys.Backspace, Transition: keys.Down, At: time.Now()}, false)
	if h.Len() != 0 {
		t.Fatal("keystrokes must not be tracked while paused")
	}
	paused = false
	r.Observe(keys.Event{Key: "a", Transition: keys.Down, At: time.Now()}, false)
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
}

type countingSink struct{ n atomic.Int64 }

func (s *countingSink) Apply(Action) error {
	s.n.Add(1)
	return nil
}

// Track с горутины движка, Step с горутины перемотки и Len/Clear/Recent
// со статуса работают с одной историей одновременно (запускать с -race).
func TestHistoryConcurrentAccess(t *testing.T) {
	const capacity, tracks = 16, 2000
	h := NewHistory(capacity)
	snk := &countingSink{}
	ex := NewExecutor(h, snk, zap.NewNop().Sugar())
	base := time.Now()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 16)
	report := func(msg string) {
		select {
		case errs <- msg:
		default:
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < tracks; i++ {
			h.Track(keys.Key(string(rune('a'+i%26))), base.Add(time.Duration(i)*time.Microsecond))
		}
	}()

	var aux sync.WaitGroup
	aux.Add(2)
	go func() {
		defer aux.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			ex.Start()
			ex.Step()
		}
	}()
	go func() {
		defer aux.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if n := h.Len(); n > h.Cap() {
				report("Len exceeds Cap")
			}
			recent := h.Recent(capacity)
			for j := 1; j < len(recent); j++ {
				if !recent[j].At.After(recent[j-1].At) {
					report("Recent not chronological")
				}
			}
			if i%100 == 0 {
				h.Clear()
			}
		}
	}()

	wg.Wait()
	close(stop)
	aux.Wait()
	ex.Stop()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
	if h.Len() > h.Cap() {
		t.Fatalf("Len %d > Cap %d", h.Len(), h.Cap())
	}

	// без конкурирующего Track записи снимаются строго от новых к старым
	for i := 0; i < capacity*2; i++ {
		h.Track("x", base.Add(time.Hour+time.Duration(i)*time.Millisecond))
	}
	var popped []time.Time
	var mu sync.Mutex
	var pops sync.WaitGroup
	for w := 0; w < 4; w++ {
		pops.Add(1)
		go func() {
			defer pops.Done()
			for {
				mu.Lock()
				ks, ok := h.Pop()
				if ok {
					popped = append(popped, ks.At)
				}
				mu.Unlock()
				if !ok {
					return
				}
				_ = h.Len()
			}
		}()
	}
	pops.Wait()
	if len(popped) != capacity {
		t.Fatalf("popped %d, want %d", len(popped), capacity)
	}
	for i := 1; i < len(popped); i++ {
		if !popped[i].Before(popped[i-1]) {
			t.Fatalf("pop order not descending at %d: %v then %v", i, popped[i-1], popped[i])
		}
	}
}
