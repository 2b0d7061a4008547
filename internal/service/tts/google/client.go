package google

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"Nemo/internal/config"
	"Nemo/internal/service/tts/player"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
)

// Client синтезирует речь через Google Cloud Text-to-Speech и сразу её проигрывает.
type Client struct {
	cfg    config.GoogleTTSConfig
	player player.Player
	logger *zap.SugaredLogger
}

func New(cfg config.GoogleTTSConfig, p player.Player, logger *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, player: p, logger: logger}
}

// Request собирает запрос к API из конфигурации.
func Request(cfg config.GoogleTTSConfig, text string) *ttspb.SynthesizeSpeechRequest {
	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  cfg.SpeakingRate,
		Pitch:         cfg.Pitch,
		VolumeGainDb:  cfg.VolumeGainDb,
	}
	if ep := strings.TrimSpace(cfg.EffectsProfileID); ep != "" {
		audio.EffectsProfileId = []string{ep}
	}
	return &ttspb.SynthesizeSpeechRequest{
		Input:       &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}},
		Voice:       &ttspb.VoiceSelectionParams{LanguageCode: cfg.Language, Name: cfg.Voice},
		AudioConfig: audio,
	}
}

func (c *Client) Synthesize(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("google tts: empty text")
	}
	ttsClient, err := gctts.NewClient(ctx)
	if err != nil {
		return err
	}
	defer ttsClient.Close()

	started := time.Now()
	resp, err := ttsClient.SynthesizeSpeech(ctx, Request(c.cfg, text))
	if err != nil {
		return err
	}
	c.logger.Infow("Google TTS synthesize completed", "took", time.Since(started).String(), "chars", len([]rune(text)))

	return c.player.Play(ctx, "mp3", io.NopCloser(bytes.NewReader(resp.GetAudioContent())))
}
