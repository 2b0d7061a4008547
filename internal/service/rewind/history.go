package rewind

import (
	"sync"
	"time"

	"Nemo/internal/service/keys"
)

// DefaultCapacity: ёмкость истории по умолчанию.
const DefaultCapacity = 5000

// Keystroke: запомненное нажатие с заранее выведенным обратным действием.
type Keystroke struct {
	Key     keys.Key
	At      time.Time
	Inverse Action
}

// History: потокобезопасная история нажатий фиксированной ёмкости.
// При переполнении вытесняется самая старая запись, порядок — порядок нажатий.
type History struct {
	mu      sync.Mutex
	buf     []Keystroke
	head    int // индекс самой старой записи
	size    int
	exclude map[keys.Key]struct{}
}

// NewHistory создаёт историю. Клавиши exclude (триггеры хоткеев) никогда не запоминаются.
func NewHistory(capacity int, exclude ...keys.Key) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &History{buf: make([]Keystroke, capacity), exclude: make(map[keys.Key]struct{}, len(exclude))}
	for _, k := range exclude {
		h.exclude[k] = struct{}{}
	}
	return h
}

// Track выводит обратное действие и добавляет запись, если клавиша обратима.
// Возвращает true, если запись добавлена.
func (h *History) Track(k keys.Key, at time.Time) bool {
	if k == "" || Denied(k) {
		return false
	}
	if _, ok := h.exclude[k]; ok {
		return false
	}
	inv := Inverse(k)
	if inv.Kind == NoOp {
		return false
	}
	h.push(Keystroke{Key: k, At: at, Inverse: inv})
	return true
}

func (h *History) push(ks Keystroke) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := len(h.buf)
	if h.size == c {
		// вытесняем самую старую
		h.buf[h.head] = ks
		h.head = (h.head + 1) % c
		return
	}
	h.buf[(h.head+h.size)%c] = ks
	h.size++
	if h.size > c {
		panic("rewind: history size exceeds capacity")
	}
}

// Pop снимает самую свежую запись. Снятая запись не восстанавливается.
func (h *History) Pop() (Keystroke, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size == 0 {
		return Keystroke{}, false
	}
	i := (h.head + h.size - 1) % len(h.buf)
	ks := h.buf[i]
	h.buf[i] = Keystroke{}
	h.size--
	return ks, true
}

// Len: текущий размер истории.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Cap: ёмкость истории.
func (h *History) Cap() int { return len(h.buf) }

// Clear очищает историю.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.buf)
	h.head, h.size = 0, 0
}

// Recent возвращает до n последних записей в хронологическом порядке.
func (h *History) Recent(n int) []Keystroke {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]Keystroke, n)
	start := h.head + h.size - n
	for i := range n {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}
