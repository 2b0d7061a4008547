// Package daemon собирает демон горячих клавиш из конфигурации.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"Nemo/internal/adapter/keyboard/evdev"
	"Nemo/internal/adapter/keyboard/gohook"
	"Nemo/internal/adapter/message"
	"Nemo/internal/adapter/sink"
	"Nemo/internal/adapter/sink/keybd"
	"Nemo/internal/adapter/sink/robotgo"
	"Nemo/internal/app/assistant"
	"Nemo/internal/app/forward"
	"Nemo/internal/app/rewinder"
	"Nemo/internal/app/screenshotter"
	"Nemo/internal/app/speaker"
	"Nemo/internal/app/voice"
	"Nemo/internal/config"
	"Nemo/internal/service/audio"
	"Nemo/internal/service/audio/mic"
	"Nemo/internal/service/clipboard"
	"Nemo/internal/service/hotkey"
	"Nemo/internal/service/keys"
	"Nemo/internal/service/notify"
	"Nemo/internal/service/rewind"
	"Nemo/internal/service/speech"
	"Nemo/internal/service/status"
	"Nemo/internal/service/stt"
	"Nemo/internal/service/stt/yandex"
	"Nemo/internal/service/tts"
	"Nemo/internal/service/tts/player"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// Injector синтезирует нажатия и печатает текст.
type Injector interface {
	rewind.Sink
	voice.Typist
}

// Ensure interface compliance
var (
	_ Injector = (*sink.DryRun)(nil)
	_ Injector = (*robotgo.Sink)(nil)
	_ Injector = (*keybd.Sink)(nil)
)

type Daemon struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	engine    *hotkey.Engine
	history   *rewind.History
	executor  *rewind.Executor
	rewinder  *rewinder.Rewinder
	voice     *voice.Voice
	assistant *assistant.Assistant
	screen    *screenshotter.Screenshotter
	speaker   *speaker.Speaker
	status    *status.Server
}

// New собирает все компоненты. Фоновые циклы стартуют в Run.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Daemon, error) {
	bindings := hotkey.DefaultBindings(Keymap(cfg))
	if err := hotkey.Validate(bindings); err != nil {
		return nil, err
	}
	classifier := hotkey.NewClassifier(bindings, ClassifierOptions(cfg))

	injector, err := newInjector(cfg, logger)
	if err != nil {
		return nil, err
	}
	source, err := NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	var applier rewind.Sink = injector
	echoes := EchoFilter(cfg)
	if echoes != nil {
		applier = sink.NewEchoing(injector, echoes)
	}

	// триггеры хоткеев не попадают в историю
	history := rewind.NewHistory(cfg.Rewind.MaxHistory, classifier.Triggers()...)
	executor := rewind.NewExecutor(history, applier, logger)
	recorder := rewind.NewRecorder(history, executor.Active, logger, cfg.DebugMode)
	dispatcher := hotkey.NewDispatcher(logger)

	engine := hotkey.NewEngine(source, classifier, dispatcher, recorder, logger, cfg.DebugMode)
	if echoes != nil {
		engine.FilterEchoes(echoes)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		history:  history,
		executor: executor,
		rewinder: rewinder.New(ctx, executor, cfg.Rewind.Tick, logger),
		screen:   screenshotter.New(cfg, logger),
	}

	ply := player.New()
	synth, err := tts.New(cfg, ply, logger)
	if err != nil {
		return nil, err
	}
	d.speaker = speaker.New(synth, logger)
	sound := notify.NewSoundNotifier(ply, logger, cfg.NotificationSoundAI, cfg.NotificationSoundTTS)
	desktop := notify.NewDesktop(cfg.DesktopNotifications, logger)

	microphone := mic.NewMicrophone(cfg.YandexSTT.SampleRate, cfg.YandexSTT.ChunkMS, logger)
	var dumper stt.Dumper
	if dir := strings.TrimSpace(cfg.AudioDumpDir); dir != "" {
		dumper = audio.NewWAVDumper(dir, microphone.SampleRate())
	}
	capture := stt.NewCapture(microphone, yandex.Factory(cfg.YandexSTT, logger), dumper, logger)

	d.voice = voice.New(
		voice.Options{TapThreshold: cfg.TapThreshold, TranscriptTimeout: cfg.TranscriptTimeout},
		capture, injector, d.speaker, clipboard.ReadText, speech.New(cfg.SpeechMax),
		func(ctx context.Context) { _ = sound.PlayTTS(ctx) },
		logger,
	)

	// ключ берётся из OPENAI_API_KEY
	oClient := openai.NewClient()
	d.assistant = assistant.New(
		assistant.Options{
			Prompt:            cfg.AssistantPrompt,
			HistoryHeader:     cfg.HistoryHeader,
			Screenshot:        cfg.AssistantScreenshot,
			Timeout:           cfg.AssistantTimeout,
			TranscriptTimeout: cfg.TranscriptTimeout,
		},
		capture, message.New(&oClient, cfg.OpenAIModel, logger), d.screen, speech.New(cfg.MaxHistoryRecords), d.speaker,
		func(ctx context.Context, answer string) {
			desktop.Notify(answer)
			_ = sound.PlayAI(ctx)
		},
		logger,
	)

	if err := errors.Join(
		d.rewinder.Register(dispatcher),
		d.voice.Register(dispatcher),
		d.assistant.Register(dispatcher),
		forward.New(desktop, logger).Register(dispatcher),
	); err != nil {
		return nil, err
	}

	if cfg.StatusServer.Enabled {
		d.status = status.New(cfg.StatusServer, status.Probe{
			History:   history,
			Rewinding: executor.Active,
			Recording: capture.Active,
		}, cfg.DebugMode, logger)
	}
	return d, nil
}

// Run блокируется до отмены ctx или фатальной ошибки источника клавиатуры.
func (d *Daemon) Run(ctx context.Context) error {
	go d.voice.Run(ctx)
	go d.assistant.Run(ctx)
	go d.screen.Run(ctx)
	if d.status != nil {
		if err := d.status.Start(ctx); err != nil {
			return err
		}
	}

	d.logger.Infow("Nemo started",
		"source", d.cfg.KeySource,
		"injector", d.cfg.Injector,
		"historyCap", d.history.Cap(),
		"tts", d.cfg.TTSService,
	)
	err := d.engine.Run(ctx)

	d.rewinder.Stop()
	d.speaker.Hush()
	return err
}

// Keymap строит набор клавиш из конфигурации.
func Keymap(cfg *config.Config) hotkey.Keymap {
	return hotkey.Keymap{
		TTS:       keys.Canonical(cfg.TTSKey),
		Assistant: keys.Canonical(cfg.AssistantKey),
		Rewind:    keys.Canonical(cfg.RewindKey),
		Forward:   keys.Canonical(cfg.ForwardKey),
	}
}

// ClassifierOptions переводит строковые политики конфигурации в опции классификатора.
func ClassifierOptions(cfg *config.Config) hotkey.Options {
	return hotkey.Options{
		ComboRelease: hotkey.ComboRelease(strings.ToLower(strings.TrimSpace(cfg.ComboRelease))),
		ModifierHold: hotkey.ModifierHold(strings.ToLower(strings.TrimSpace(cfg.ModifierHoldStart))),
	}
}

// EchoFilter нужен, когда синтезированные нажатия возвращаются через глобальный хук.
// evdev читает только физическое устройство, dry-run ничего не нажимает.
func EchoFilter(cfg *config.Config) *hotkey.EchoFilter {
	src := strings.ToLower(strings.TrimSpace(cfg.KeySource))
	inj := strings.ToLower(strings.TrimSpace(cfg.Injector))
	if src != "hook" || inj == "dry-run" {
		return nil
	}
	return hotkey.NewEchoFilter(hotkey.DefaultEchoTTL)
}

func newInjector(cfg *config.Config, logger *zap.SugaredLogger) (Injector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Injector)) {
	case "robotgo":
		return robotgo.New(logger), nil
	case "keybd":
		return keybd.New(logger)
	case "dry-run":
		return sink.NewDryRun(logger), nil
	default:
		return nil, fmt.Errorf("неизвестный injector %q", cfg.Injector)
	}
}

// NewSource выбирает источник клавиатуры.
func NewSource(cfg *config.Config, logger *zap.SugaredLogger) (hotkey.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.KeySource)) {
	case "hook":
		return gohook.New(logger, cfg.DebugMode), nil
	case "evdev":
		if runtime.GOOS != "linux" {
			return nil, fmt.Errorf("key source evdev поддерживается только на linux, текущая ОС %s", runtime.GOOS)
		}
		return evdev.New(cfg.EvdevDevice, logger), nil
	default:
		return nil, fmt.Errorf("неизвестный key source %q", cfg.KeySource)
	}
}
