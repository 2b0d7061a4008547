package yandex

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"Nemo/internal/config"
	"Nemo/internal/service/stt"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultEndpoint = "wss://stt.api.cloud.yandex.net/speech/v1/stt:streaming"

// ErrNoAPIKey: ключ SpeechKit не задан.
var ErrNoAPIKey = errors.New("yandex stt: пустой API key (ожидается YC_STT_API_KEY)")

// Client: одна потоковая сессия распознавания через WebSocket SpeechKit.
type Client struct {
	cfg    config.YandexSTTConfig
	logger *zap.SugaredLogger

	mu      sync.Mutex
	conn    *websocket.Conn
	started bool
	closed  bool

	results chan stt.Result
}

// Ensure interface compliance
var _ stt.Recognizer = (*Client)(nil)

// New создаёт клиент без установления соединения.
func New(cfg config.YandexSTTConfig, logger *zap.SugaredLogger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = "ru-RU"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return &Client{cfg: cfg, logger: logger, results: make(chan stt.Result, 32)}, nil
}

// Factory возвращает фабрику клиентов для stt.Capture: каждая запись — новое соединение.
func Factory(cfg config.YandexSTTConfig, logger *zap.SugaredLogger) stt.RecognizerFactory {
	return func() (stt.Recognizer, error) { return New(cfg, logger) }
}

// streamURL добавляет параметры, которые ожидает WebSocket API SpeechKit v1.
func (c *Client) streamURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("yandex stt: неверный endpoint: %w", err)
	}
	q := u.Query()
	q.Set("lang", c.cfg.Language)
	q.Set("sampleRateHertz", strconv.Itoa(c.cfg.SampleRate))
	if q.Get("topic") == "" {
		q.Set("topic", "general")
	}
	if q.Get("format") == "" {
		q.Set("format", "lpcm")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Start открывает WebSocket и запускает горутину приёма сообщений.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("yandex stt: уже запущено")
	}

	addr, err := c.streamURL()
	if err != nil {
		return err
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 15 * time.Second,
	}
	header := http.Header{}
	header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

	conn, resp, err := dialer.DialContext(ctx, addr, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("yandex stt: не удалось подключиться (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("yandex stt: не удалось подключиться: %w", err)
	}

	start, _ := json.Marshal(map[string]any{
		"lang":            c.cfg.Language,
		"format":          "lpcm",
		"sampleRateHertz": c.cfg.SampleRate,
		"topic":           "general",
		"partialResults":  true,
	})
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		_ = conn.Close()
		return fmt.Errorf("yandex stt: не удалось отправить конфигурацию: %w", err)
	}

	c.conn = conn
	c.started = true
	go c.readLoop(conn)
	c.logger.Debugw("STT stream opened", "lang", c.cfg.Language, "sampleRate", c.cfg.SampleRate)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.results)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !c.isClosed() {
				c.logger.Warnw("STT read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if res, ok := parseServerMessage(data); ok {
			c.results <- res
		}
	}
}

// parseServerMessage вытаскивает текст и признак финальности из известных форм ответа.
func parseServerMessage(data []byte) (stt.Result, bool) {
	var m struct {
		Result       string `json:"result"`
		Text         string `json:"text"`
		Partial      string `json:"partial"`
		Final        bool   `json:"final"`
		IsFinal      bool   `json:"is_final"`
		Alternatives []struct {
			Text string `json:"text"`
		} `json:"alternatives"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return stt.Result{}, false
	}
	final := m.Final || m.IsFinal
	var text string
	switch {
	case m.Result != "":
		text = m.Result
	case len(m.Alternatives) > 0:
		text = m.Alternatives[0].Text
	case m.Text != "":
		text = m.Text
	case m.Partial != "":
		text, final = m.Partial, false
	}
	if text == "" && !final {
		return stt.Result{}, false
	}
	return stt.Result{Text: text, Final: final, At: time.Now()}, true
}

// WritePCM16 отправляет сэмплы PCM16 mono бинарным фреймом (little-endian).
func (c *Client) WritePCM16(samples []int16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || c.conn == nil {
		return errors.New("yandex stt: соединение не установлено (Start не вызывался)")
	}
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, b)
}

// Finish сообщает серверу о конце аудио; результаты продолжают приходить до закрытия.
func (c *Client) Finish() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || c.conn == nil {
		return nil
	}
	return c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "eof"))
}

// Results возвращает канал с гипотезами. Закрывается вместе с соединением.
func (c *Client) Results() <-chan stt.Result { return c.results }

// Close закрывает соединение.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		close(c.results)
		return nil
	}
	return c.conn.Close()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
