package speech

import (
	"strings"
	"sync"
)

// Speech: потокобезопасный буфер фиксированной ёмкости: распознанные фразы
// или ответы ассистента. Старые записи вытесняются.
type Speech struct {
	cap      int
	messages []string
	mu       sync.Mutex
}

func New(capacity int) *Speech {
	if capacity <= 0 {
		capacity = 10
	}
	return &Speech{cap: capacity, messages: make([]string, 0, capacity)}
}

// Add добавляет сообщение, при переполнении удаляет самое старое.
func (s *Speech) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == s.cap {
		copy(s.messages, s.messages[1:])
		s.messages = s.messages[:s.cap-1]
	}
	s.messages = append(s.messages, text)
}

// Recent возвращает до n последних сообщений от старых к новым. n <= 0 — все.
func (s *Speech) Recent(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.messages) {
		n = len(s.messages)
	}
	out := make([]string, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out
}

// Block форматирует буфер как блок контекста для запроса к ИИ.
func (s *Speech) Block(header string) string {
	msgs := s.Recent(0)
	if len(msgs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(header)
	for _, m := range msgs {
		b.WriteString("\n- ")
		b.WriteString(m)
	}
	return b.String()
}

func (s *Speech) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Speech) Clear() {
	s.mu.Lock()
	s.messages = s.messages[:0]
	s.mu.Unlock()
}
