package hotkey

import (
	"sync"
	"time"

	"Nemo/internal/service/keys"
)

// DefaultEchoTTL: сколько ждём, пока хук вернёт синтезированное нажатие.
const DefaultEchoTTL = 500 * time.Millisecond

// EchoFilter отсеивает нажатия, которые демон отправил сам. Глобальный хук
// видит их как обычные физические нажатия.
// Одно ожидание снимает одну пару Down/Up той же клавиши.
type EchoFilter struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	pending map[echoSlot][]time.Time
}

type echoSlot struct {
	key keys.Key
	tr  keys.Transition
}

func NewEchoFilter(ttl time.Duration) *EchoFilter {
	if ttl <= 0 {
		ttl = DefaultEchoTTL
	}
	return &EchoFilter{ttl: ttl, now: time.Now, pending: make(map[echoSlot][]time.Time)}
}

// Expect вызывается перед синтезом нажатия k.
func (f *EchoFilter) Expect(k keys.Key) {
	k = echoKey(k)
	if k == "" {
		return
	}
	deadline := f.now().Add(f.ttl)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tr := range []keys.Transition{keys.Down, keys.Up} {
		s := echoSlot{key: k, tr: tr}
		f.pending[s] = append(f.pending[s], deadline)
	}
}

// Swallow сообщает, что ev ожидался, и снимает это ожидание.
func (f *EchoFilter) Swallow(ev keys.Event) bool {
	s := echoSlot{key: echoKey(ev.Key), tr: ev.Transition}
	now := f.now()
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.pending[s]
	for len(q) > 0 && now.After(q[0]) {
		q = q[1:]
	}
	if len(q) == 0 {
		delete(f.pending, s)
		return false
	}
	if q = q[1:]; len(q) == 0 {
		delete(f.pending, s)
	} else {
		f.pending[s] = q
	}
	return true
}

// Pending: число ещё не пришедших событий, включая просроченные.
func (f *EchoFilter) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.pending {
		n += len(q)
	}
	return n
}

// echoKey сводит стороны модификатора: синтез шлёт «ctrl», хук может вернуть «left ctrl».
func echoKey(k keys.Key) keys.Key {
	switch {
	case keys.IsCtrl(k):
		return keys.Ctrl
	case keys.IsAlt(k):
		return keys.Alt
	case keys.IsShift(k):
		return keys.Shift
	case keys.IsMeta(k):
		return keys.Meta
	}
	return k
}
