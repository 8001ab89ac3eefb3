package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	STTProviderOpenAI        = "openai"
	STTProviderFasterWhisper = "faster-whisper"

	TTSProviderOpenAI     = "openai"
	TTSProviderElevenLabs = "elevenlabs"
)

type Config struct {
	Port           string
	UIOrigins      []string
	MaxUploadBytes int64
	ScratchDir     string
	RequestTimeout time.Duration
	LogDevelopment bool

	Translation TranslationConfig
	STT         STTConfig
	TTS         TTSConfig
	RateLimit   RateLimitConfig
}

type TranslationConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
	LogProbs    bool
	Timeout     time.Duration
	Serialize   bool
}

type STTConfig struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	WhisperURL string
	BeamSize   int
	VADFilter  bool
	Timeout    time.Duration
	Serialize  bool
}

type TTSConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Model           string
	Voice           string
	Speed           float64
	DefaultSource   string
	ElevenLabsKey   string
	ElevenLabsVoice string
	ElevenLabsModel string
	Timeout         time.Duration
	Serialize       bool
}

// RateLimit values are requests per Window per client IP; 0 disables.
type RateLimitConfig struct {
	Translate int
	STT       int
	TTS       int
	Window    time.Duration
}

// MaxUploadLabel renders the upload limit for user-facing messages.
func (c *Config) MaxUploadLabel() string {
	return humanize.Bytes(uint64(c.MaxUploadBytes))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("ui_origin", "http://localhost:8000")
	v.SetDefault("max_upload_size", "10MB")
	v.SetDefault("scratch_dir", filepath.Join(os.TempDir(), "medassist"))
	v.SetDefault("request_timeout", 4*time.Minute)
	v.SetDefault("log_development", false)

	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")

	v.SetDefault("translation_api_key", "")
	v.SetDefault("translation_base_url", "")
	v.SetDefault("translation_model", "gpt-4o-mini")
	v.SetDefault("translation_max_tokens", 512)
	v.SetDefault("translation_temperature", 0.3)
	v.SetDefault("translation_top_p", 0.95)
	v.SetDefault("translation_logprobs", true)
	v.SetDefault("translation_timeout", 60*time.Second)
	v.SetDefault("serialize_translation", false)

	v.SetDefault("stt_provider", STTProviderOpenAI)
	v.SetDefault("stt_model", "whisper-1")
	v.SetDefault("whisper_url", "http://localhost:8387")
	v.SetDefault("stt_beam_size", 5)
	v.SetDefault("stt_vad_filter", true)
	v.SetDefault("stt_timeout", 120*time.Second)
	v.SetDefault("serialize_stt", false)

	v.SetDefault("tts_provider", TTSProviderOpenAI)
	v.SetDefault("tts_model", "tts-1")
	v.SetDefault("tts_voice", "alloy")
	v.SetDefault("tts_speed", 1.0)
	v.SetDefault("tts_default_source_language", "en")
	v.SetDefault("elevenlabs_api_key", "")
	v.SetDefault("elevenlabs_voice_id", "EXAVITQu4vr4xnSDxMaL")
	v.SetDefault("elevenlabs_model", "eleven_multilingual_v2")
	v.SetDefault("tts_timeout", 60*time.Second)
	v.SetDefault("serialize_tts", false)

	v.SetDefault("rate_limit_translate", 60)
	v.SetDefault("rate_limit_stt", 20)
	v.SetDefault("rate_limit_tts", 30)
	v.SetDefault("rate_limit_window", time.Minute)
}

// Load reads .env (if present), an optional config.yaml and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	maxUpload, err := humanize.ParseBytes(v.GetString("max_upload_size"))
	if err != nil {
		return nil, fmt.Errorf("parse MAX_UPLOAD_SIZE: %w", err)
	}

	openAIKey := v.GetString("openai_api_key")
	openAIBase := v.GetString("openai_base_url")

	cfg := &Config{
		Port:           v.GetString("port"),
		UIOrigins:      splitList(v.GetString("ui_origin")),
		MaxUploadBytes: int64(maxUpload),
		ScratchDir:     v.GetString("scratch_dir"),
		RequestTimeout: v.GetDuration("request_timeout"),
		LogDevelopment: v.GetBool("log_development"),

		Translation: TranslationConfig{
			APIKey:      firstNonEmpty(v.GetString("translation_api_key"), openAIKey),
			BaseURL:     firstNonEmpty(v.GetString("translation_base_url"), openAIBase),
			Model:       v.GetString("translation_model"),
			MaxTokens:   v.GetInt("translation_max_tokens"),
			Temperature: float32(v.GetFloat64("translation_temperature")),
			TopP:        float32(v.GetFloat64("translation_top_p")),
			LogProbs:    v.GetBool("translation_logprobs"),
			Timeout:     v.GetDuration("translation_timeout"),
			Serialize:   v.GetBool("serialize_translation"),
		},
		STT: STTConfig{
			Provider:   strings.ToLower(v.GetString("stt_provider")),
			APIKey:     openAIKey,
			BaseURL:    openAIBase,
			Model:      v.GetString("stt_model"),
			WhisperURL: v.GetString("whisper_url"),
			BeamSize:   v.GetInt("stt_beam_size"),
			VADFilter:  v.GetBool("stt_vad_filter"),
			Timeout:    v.GetDuration("stt_timeout"),
			Serialize:  v.GetBool("serialize_stt"),
		},
		TTS: TTSConfig{
			Provider:        strings.ToLower(v.GetString("tts_provider")),
			APIKey:          openAIKey,
			BaseURL:         openAIBase,
			Model:           v.GetString("tts_model"),
			Voice:           v.GetString("tts_voice"),
			Speed:           v.GetFloat64("tts_speed"),
			DefaultSource:   v.GetString("tts_default_source_language"),
			ElevenLabsKey:   v.GetString("elevenlabs_api_key"),
			ElevenLabsVoice: v.GetString("elevenlabs_voice_id"),
			ElevenLabsModel: v.GetString("elevenlabs_model"),
			Timeout:         v.GetDuration("tts_timeout"),
			Serialize:       v.GetBool("serialize_tts"),
		},
		RateLimit: RateLimitConfig{
			Translate: v.GetInt("rate_limit_translate"),
			STT:       v.GetInt("rate_limit_stt"),
			TTS:       v.GetInt("rate_limit_tts"),
			Window:    v.GetDuration("rate_limit_window"),
		},
	}

	return cfg, nil
}

// Validate checks that every selected collaborator has what it needs.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be positive"))
	}
	// /stt and /tts chain a translation after the speech call
	if c.RequestTimeout > 0 {
		chain := max(c.STT.Timeout, c.TTS.Timeout) + c.Translation.Timeout
		if c.RequestTimeout < chain {
			errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT %s is shorter than the speech plus translation timeouts (%s)", c.RequestTimeout, chain))
		}
	}

	// a custom base url means a self-hosted OpenAI-compatible server (llama.cpp etc.)
	if c.Translation.APIKey == "" && c.Translation.BaseURL == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY or TRANSLATION_BASE_URL is required for translation"))
	}

	switch c.STT.Provider {
	case STTProviderOpenAI:
		if c.STT.APIKey == "" && c.STT.BaseURL == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for STT_PROVIDER=openai"))
		}
	case STTProviderFasterWhisper:
		if c.STT.WhisperURL == "" {
			errs = append(errs, errors.New("WHISPER_URL is required for STT_PROVIDER=faster-whisper"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STT_PROVIDER %q", c.STT.Provider))
	}

	switch c.TTS.Provider {
	case TTSProviderOpenAI:
		if c.TTS.APIKey == "" && c.TTS.BaseURL == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for TTS_PROVIDER=openai"))
		}
	case TTSProviderElevenLabs:
		if c.TTS.ElevenLabsKey == "" {
			errs = append(errs, errors.New("ELEVENLABS_API_KEY is required for TTS_PROVIDER=elevenlabs"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TTS_PROVIDER %q", c.TTS.Provider))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
