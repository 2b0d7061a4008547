package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"Nemo/internal/config"
	"Nemo/internal/service/tts/player"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

// Cloud TTS v1beta1 text:synthesize, совместимый с Gemini-TTS.
const defaultEndpoint = "https://texttospeech.googleapis.com/v1beta1/text:synthesize"

// HTTPClientFunc возвращает авторизованный клиент. По умолчанию ADC.
type HTTPClientFunc func(ctx context.Context) (*http.Client, error)

func adcClient(ctx context.Context) (*http.Client, error) {
	c, err := google.DefaultClient(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, errors.New("gemini tts: ADC credentials not found, set GOOGLE_APPLICATION_CREDENTIALS")
	}
	return c, nil
}

// Client синтезирует речь через Gemini-TTS и проигрывает результат.
type Client struct {
	cfg       config.GeminiTTSConfig
	endpoint  string
	newClient HTTPClientFunc
	player    player.Player
	logger    *zap.SugaredLogger
}

func New(cfg config.GeminiTTSConfig, p player.Player, logger *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, endpoint: defaultEndpoint, newClient: adcClient, player: p, logger: logger}
}

// WithHTTP подменяет адрес и авторизацию (тесты, прокси).
func (c *Client) WithHTTP(endpoint string, fn HTTPClientFunc) *Client {
	c.endpoint = endpoint
	c.newClient = fn
	return c
}

type requestPayload struct {
	Input struct {
		Prompt string `json:"prompt,omitempty"`
		Text   string `json:"text"`
	} `json:"input"`
	Voice struct {
		ModelName    string `json:"modelName,omitempty"`
		LanguageCode string `json:"languageCode,omitempty"`
		VoiceName    string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type jsonAudioResponse struct {
	AudioContent string `json:"audioContent"`
}

func (c *Client) payload(text string) requestPayload {
	var rp requestPayload
	rp.Input.Text = text
	rp.Input.Prompt = strings.TrimSpace(c.cfg.Prompt)
	rp.Voice.ModelName = strings.TrimSpace(c.cfg.Model)
	rp.Voice.LanguageCode = strings.TrimSpace(c.cfg.Language)
	rp.Voice.VoiceName = strings.TrimSpace(c.cfg.Voice)
	rp.AudioConfig.AudioEncoding = "MP3"
	return rp
}

func (c *Client) Synthesize(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("gemini tts: empty text")
	}
	body, err := json.Marshal(c.payload(text))
	if err != nil {
		return err
	}
	httpClient, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.logger.Infow("Gemini TTS request completed", "status", resp.StatusCode, "took", time.Since(started).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return fmt.Errorf("gemini tts error: status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var jr jsonAudioResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 5<<20)).Decode(&jr); err != nil {
		return fmt.Errorf("gemini tts: decode json response: %w", err)
	}
	if strings.TrimSpace(jr.AudioContent) == "" {
		return errors.New("gemini tts: empty audioContent in response")
	}
	data, err := base64.StdEncoding.DecodeString(jr.AudioContent)
	if err != nil {
		return fmt.Errorf("gemini tts: base64 decode: %w", err)
	}
	return c.player.Play(ctx, "mp3", io.NopCloser(bytes.NewReader(data)))
}
