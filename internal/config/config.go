package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool `env:"DEBUG_MODE"` // Режим дебага: трассировка клавиш и событий хоткеев

	// Источник клавиатуры и синтез нажатий
	KeySource   string `env:"KEY_SOURCE"`   // hook|evdev
	EvdevDevice string `env:"EVDEV_DEVICE"` // Путь к /dev/input/eventN; пусто — автопоиск клавиатуры
	Injector    string `env:"INJECTOR"`     // robotgo|keybd|dry-run

	// Привязки
	TTSKey            string        `env:"TTS_KEY"`             // Клавиша голосового ввода
	AssistantKey      string        `env:"ASSISTANT_KEY"`       // Клавиша ассистента, она же модификатор комбо
	RewindKey         string        `env:"REWIND_KEY"`          // Направление перемотки назад
	ForwardKey        string        `env:"FORWARD_KEY"`         // Направление «вперёд»
	ComboRelease      string        `env:"COMBO_RELEASE"`       // modifier|directional|either
	ModifierHoldStart string        `env:"MODIFIER_HOLD_START"` // release|press
	TapThreshold      time.Duration `env:"TAP_THRESHOLD"`       // Короче — считаем нажатие тапом

	// Перемотка
	Rewind RewindConfig

	// Голос и распознавание
	TranscriptTimeout time.Duration `env:"TRANSCRIPT_TIMEOUT"` // Сколько ждём финальный результат STT после отпускания
	AudioDumpDir      string        `env:"AUDIO_DUMP_DIR"`     // Куда писать WAV записей (пусто — не писать)
	SpeechMax         int           `env:"SPEECH_MAX"`         // Максимум хранимых распознанных фраз
	YandexSTT         YandexSTTConfig

	// Ассистент
	AssistantPrompt     string        `env:"ASSISTANT_PROMPT"`     // Системный промпт ассистента
	OpenAIModel         string        `env:"OPENAI_MODEL"`         // Модель Responses API
	AssistantScreenshot bool          `env:"ASSISTANT_SCREENSHOT"` // Прикладывать скриншот экрана к вопросу
	AssistantTimeout    time.Duration `env:"ASSISTANT_TIMEOUT"`    // Таймаут запроса к ИИ
	HistoryHeader       string        `env:"HISTORY_HEADER"`       // Заголовок блока с историей ответов ИИ
	MaxHistoryRecords   int           `env:"MAX_HISTORY_RECORDS"`  // Максимум хранимых ответов ИИ
	ScreenshotDir       string        `env:"SCREENSHOT_DIR"`       // Папка для скриншотов
	ScreenshotTTL       time.Duration `env:"SCREENSHOT_TTL"`       // Через сколько скриншоты удаляются

	// TTS
	TTSService string `env:"TTS_SERVICE"` // google|gemini
	GoogleTTS  GoogleTTSConfig
	GeminiTTS  GeminiTTSConfig

	// Уведомления
	NotificationSoundAI  string `env:"NOTIFICATION_SOUND_AI"`  // Звук перед ответом ассистента
	NotificationSoundTTS string `env:"NOTIFICATION_SOUND_TTS"` // Звук начала записи
	DesktopNotifications bool   `env:"DESKTOP_NOTIFICATIONS"`  // Всплывающие уведомления ОС

	StatusServer StatusServerConfig
}

// RewindConfig параметры истории и перемотки.
type RewindConfig struct {
	MaxHistory int           `env:"REWIND_MAX_HISTORY"` // Ёмкость истории нажатий
	Tick       time.Duration `env:"REWIND_TICK"`        // Один шаг перемотки за тик, пока комбо удерживается
}

// YandexSTTConfig потоковое распознавание Yandex SpeechKit.
type YandexSTTConfig struct {
	APIKey     string `env:"YC_STT_API_KEY"`     // Ключ берём из .env/ENV
	Endpoint   string `env:"YC_STT_ENDPOINT"`    // WebSocket адрес
	Language   string `env:"YC_STT_LANGUAGE"`    // ru-RU по умолчанию
	SampleRate int    `env:"YC_STT_SAMPLE_RATE"` // Гц, 16000 по умолчанию
	ChunkMS    int    `env:"YC_STT_CHUNK_MS"`    // Размер чанка микрофона, мс
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsPath  string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Language         string  `env:"GOOGLE_TTS_LANGUAGE"`
	Voice            string  `env:"GOOGLE_TTS_VOICE"`
	SpeakingRate     float64 `env:"GOOGLE_TTS_SPEAKING_RATE"`
	Pitch            float64 `env:"GOOGLE_TTS_PITCH"`
	VolumeGainDb     float64 `env:"GOOGLE_TTS_VOLUME_DB"`
	EffectsProfileID string  `env:"GOOGLE_TTS_EFFECTS_PROFILE_ID"`
}

// GeminiTTSConfig синтез через Gemini TTS (Cloud TTS REST с ADC).
type GeminiTTSConfig struct {
	Model    string `env:"GEMINI_TTS_MODEL"`
	Voice    string `env:"GEMINI_TTS_VOICE"`
	Language string `env:"GEMINI_TTS_LANGUAGE"`
	Prompt   string `env:"GEMINI_TTS_PROMPT"` // Стиль озвучки
}

// StatusServerConfig локальный HTTP сервер состояния.
type StatusServerConfig struct {
	Enabled  bool   `env:"STATUS_SERVER_ENABLED"`   // Главный флаг включения
	BindAddr string `env:"STATUS_SERVER_BIND_ADDR"` // Только локальный адрес, напр. 127.0.0.1:3917
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:         false,
		KeySource:         "hook",
		Injector:          "robotgo",
		TTSKey:            "right shift",
		AssistantKey:      "right alt",
		RewindKey:         "left",
		ForwardKey:        "right",
		ComboRelease:      "modifier",
		ModifierHoldStart: "press",
		TapThreshold:      200 * time.Millisecond,
		Rewind: RewindConfig{
			MaxHistory: 5000,
			Tick:       40 * time.Millisecond,
		},
		TranscriptTimeout: 2 * time.Second,
		SpeechMax:         10,
		YandexSTT: YandexSTTConfig{
			Endpoint:   "wss://stt.api.cloud.yandex.net/speech/v1/stt:streaming",
			Language:   "ru-RU",
			SampleRate: 16000,
			ChunkMS:    100,
		},
		AssistantPrompt:     "Ты голосовой помощник. Отвечай коротко, ответ будет озвучен.",
		OpenAIModel:         "gpt-4o-mini",
		AssistantScreenshot: true,
		AssistantTimeout:    60 * time.Second,
		HistoryHeader:       "история предыдущих ответов AI:",
		MaxHistoryRecords:   10,
		ScreenshotDir:       "images",
		ScreenshotTTL:       10 * time.Minute,
		TTSService:          "google",
		GoogleTTS: GoogleTTSConfig{
			CredentialsPath:  "service-account.json",
			Language:         "ru-RU",
			Voice:            "ru-RU-Standard-A",
			SpeakingRate:     1.0,
			EffectsProfileID: "large-home-entertainment-class-device",
		},
		GeminiTTS: GeminiTTSConfig{
			Model:    "gemini-2.5-flash-tts",
			Voice:    "Kore",
			Language: "ru-RU",
		},
		NotificationSoundAI:  "sound/notification2.mp3",
		NotificationSoundTTS: "",
		DesktopNotifications: true,
		StatusServer: StatusServerConfig{
			Enabled:  false,
			BindAddr: "127.0.0.1:3917",
		},
	}
}

// NewConfig загружает конфигурацию приложения: дефолты, .env, окружение, флаги.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := Defaults()
	_ = env.Parse(cfg)

	BindFlags(flag.CommandLine, cfg)
	flag.Parse()

	// Google SDK читает ключ только из ENV
	if strings.EqualFold(cfg.TTSService, "google") && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		if cp := strings.TrimSpace(cfg.GoogleTTS.CredentialsPath); cp != "" {
			_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
		}
	}
	return cfg
}

// BindFlags регистрирует флаги CLI поверх текущих значений cfg.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага (трассировка клавиш)")
	// Клавиатура
	fs.StringVar(&cfg.KeySource, "key-source", cfg.KeySource, "источник клавиатуры: hook|evdev")
	fs.StringVar(&cfg.EvdevDevice, "evdev-device", cfg.EvdevDevice, "путь к устройству evdev, пусто = автопоиск")
	fs.StringVar(&cfg.Injector, "injector", cfg.Injector, "синтез нажатий: robotgo|keybd|dry-run")
	fs.StringVar(&cfg.TTSKey, "tts-key", cfg.TTSKey, "клавиша голосового ввода")
	fs.StringVar(&cfg.AssistantKey, "assistant-key", cfg.AssistantKey, "клавиша ассистента и модификатор комбо")
	fs.StringVar(&cfg.RewindKey, "rewind-key", cfg.RewindKey, "клавиша перемотки назад (в паре с модификатором)")
	fs.StringVar(&cfg.ForwardKey, "forward-key", cfg.ForwardKey, "клавиша «вперёд» (в паре с модификатором)")
	fs.StringVar(&cfg.ComboRelease, "combo-release", cfg.ComboRelease, "когда комбо считается отпущенным: modifier|directional|either")
	fs.StringVar(&cfg.ModifierHoldStart, "modifier-hold-start", cfg.ModifierHoldStart, "когда модификатор шлёт HoldStart: release|press")
	fs.DurationVar(&cfg.TapThreshold, "tap-threshold", cfg.TapThreshold, "порог тапа, напр. 200ms")
	// Перемотка
	fs.IntVar(&cfg.Rewind.MaxHistory, "rewind-max-history", cfg.Rewind.MaxHistory, "ёмкость истории нажатий")
	fs.DurationVar(&cfg.Rewind.Tick, "rewind-tick", cfg.Rewind.Tick, "интервал шага перемотки, напр. 40ms")
	// Голос
	fs.DurationVar(&cfg.TranscriptTimeout, "transcript-timeout", cfg.TranscriptTimeout, "ожидание финального результата STT")
	fs.StringVar(&cfg.AudioDumpDir, "audio-dump-dir", cfg.AudioDumpDir, "папка для WAV записей (дебаг)")
	fs.IntVar(&cfg.SpeechMax, "speech-max", cfg.SpeechMax, "максимум хранимых распознанных фраз")
	fs.StringVar(&cfg.YandexSTT.APIKey, "yc-stt-api-key", cfg.YandexSTT.APIKey, "API ключ Yandex SpeechKit STT (перекрывает ENV)")
	fs.StringVar(&cfg.YandexSTT.Endpoint, "yc-stt-endpoint", cfg.YandexSTT.Endpoint, "WebSocket адрес STT")
	fs.StringVar(&cfg.YandexSTT.Language, "yc-stt-language", cfg.YandexSTT.Language, "язык распознавания, напр. ru-RU")
	fs.IntVar(&cfg.YandexSTT.SampleRate, "yc-stt-sample-rate", cfg.YandexSTT.SampleRate, "частота дискретизации микрофона")
	fs.IntVar(&cfg.YandexSTT.ChunkMS, "yc-stt-chunk-ms", cfg.YandexSTT.ChunkMS, "размер чанка микрофона в мс")
	// Ассистент
	fs.StringVar(&cfg.AssistantPrompt, "assistant-prompt", cfg.AssistantPrompt, "системный промпт ассистента")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", cfg.OpenAIModel, "модель OpenAI")
	fs.BoolVar(&cfg.AssistantScreenshot, "assistant-screenshot", cfg.AssistantScreenshot, "прикладывать скриншот к вопросу")
	fs.DurationVar(&cfg.AssistantTimeout, "assistant-timeout", cfg.AssistantTimeout, "таймаут запроса к ИИ")
	fs.StringVar(&cfg.HistoryHeader, "history-header", cfg.HistoryHeader, "заголовок блока с историей предыдущих ответов AI")
	fs.IntVar(&cfg.MaxHistoryRecords, "max-history-records", cfg.MaxHistoryRecords, "максимум хранимых ответов ИИ")
	fs.StringVar(&cfg.ScreenshotDir, "screenshot-dir", cfg.ScreenshotDir, "папка для скриншотов")
	fs.DurationVar(&cfg.ScreenshotTTL, "screenshot-ttl", cfg.ScreenshotTTL, "время жизни скриншотов")
	// TTS
	fs.StringVar(&cfg.TTSService, "tts-service", cfg.TTSService, "выбор сервиса TTS: google|gemini")
	fs.StringVar(&cfg.GoogleTTS.CredentialsPath, "google-tts-credentials", cfg.GoogleTTS.CredentialsPath, "путь к service-account.json (также ENV GOOGLE_APPLICATION_CREDENTIALS)")
	fs.StringVar(&cfg.GoogleTTS.Language, "google-tts-language", cfg.GoogleTTS.Language, "язык синтеза, напр. ru-RU")
	fs.StringVar(&cfg.GoogleTTS.Voice, "google-tts-voice", cfg.GoogleTTS.Voice, "имя голоса, напр. ru-RU-Standard-A")
	fs.Float64Var(&cfg.GoogleTTS.SpeakingRate, "google-tts-speaking-rate", cfg.GoogleTTS.SpeakingRate, "скорость речи (1.0 по умолчанию)")
	fs.Float64Var(&cfg.GoogleTTS.Pitch, "google-tts-pitch", cfg.GoogleTTS.Pitch, "тон (полутоны)")
	fs.Float64Var(&cfg.GoogleTTS.VolumeGainDb, "google-tts-volume-db", cfg.GoogleTTS.VolumeGainDb, "усиление громкости (дБ)")
	fs.StringVar(&cfg.GeminiTTS.Model, "gemini-tts-model", cfg.GeminiTTS.Model, "модель Gemini TTS")
	fs.StringVar(&cfg.GeminiTTS.Voice, "gemini-tts-voice", cfg.GeminiTTS.Voice, "голос Gemini TTS")
	fs.StringVar(&cfg.GeminiTTS.Prompt, "gemini-tts-prompt", cfg.GeminiTTS.Prompt, "стиль озвучки Gemini TTS")
	// Уведомления
	fs.StringVar(&cfg.NotificationSoundAI, "notification-sound-ai", cfg.NotificationSoundAI, "звук перед ответом ассистента (mp3 или wav)")
	fs.StringVar(&cfg.NotificationSoundTTS, "notification-sound-tts", cfg.NotificationSoundTTS, "звук начала записи (mp3 или wav)")
	fs.BoolVar(&cfg.DesktopNotifications, "desktop-notifications", cfg.DesktopNotifications, "всплывающие уведомления ОС")
	// StatusServer
	fs.BoolVar(&cfg.StatusServer.Enabled, "status-server-enabled", cfg.StatusServer.Enabled, "включить локальный сервер состояния")
	fs.StringVar(&cfg.StatusServer.BindAddr, "status-server-bind-addr", cfg.StatusServer.BindAddr, "адрес сервера состояния (напр. 127.0.0.1:3917)")
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	var errs []error
	oneOf := func(name, v string, allowed ...string) {
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSpace(v), a) {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: %q, ожидается одно из %v", name, v, allowed))
	}
	oneOf("key-source", c.KeySource, "hook", "evdev")
	oneOf("injector", c.Injector, "robotgo", "keybd", "dry-run")
	oneOf("combo-release", c.ComboRelease, "modifier", "directional", "either")
	oneOf("modifier-hold-start", c.ModifierHoldStart, "release", "press")
	oneOf("tts-service", c.TTSService, "google", "gemini")

	for name, v := range map[string]string{"tts-key": c.TTSKey, "assistant-key": c.AssistantKey, "rewind-key": c.RewindKey, "forward-key": c.ForwardKey} {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s: пустая клавиша", name))
		}
	}
	if c.Rewind.MaxHistory <= 0 {
		errs = append(errs, fmt.Errorf("rewind-max-history: %d, должно быть > 0", c.Rewind.MaxHistory))
	}
	if c.Rewind.Tick <= 0 {
		errs = append(errs, fmt.Errorf("rewind-tick: %s, должно быть > 0", c.Rewind.Tick))
	}
	if c.TapThreshold < 0 {
		errs = append(errs, fmt.Errorf("tap-threshold: %s, должно быть >= 0", c.TapThreshold))
	}
	return errors.Join(errs...)
}

// CheckGoogleCredentials проверяет наличие файла ключа Google, если выбран google TTS.
func (c *Config) CheckGoogleCredentials() error {
	if !strings.EqualFold(c.TTSService, "google") {
		return nil
	}
	cred := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if cred == "" {
		cred = strings.TrimSpace(c.GoogleTTS.CredentialsPath)
	}
	if cred == "" {
		return errors.New("google tts: переменная окружения GOOGLE_APPLICATION_CREDENTIALS не задана; укажите ENV или флаг -google-tts-credentials")
	}
	if _, err := os.Stat(cred); err != nil {
		return fmt.Errorf("google tts: файл ключа не найден: %s", cred)
	}
	return nil
}
