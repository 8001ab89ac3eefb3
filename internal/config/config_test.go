package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, []string{"http://localhost:8000"}, cfg.UIOrigins)
	assert.Equal(t, int64(10_000_000), cfg.MaxUploadBytes)
	assert.Equal(t, "10 MB", cfg.MaxUploadLabel())

	assert.Equal(t, "sk-test", cfg.Translation.APIKey)
	assert.Equal(t, 512, cfg.Translation.MaxTokens)
	assert.InDelta(t, 0.3, cfg.Translation.Temperature, 1e-6)
	assert.InDelta(t, 0.95, cfg.Translation.TopP, 1e-6)

	assert.Equal(t, STTProviderOpenAI, cfg.STT.Provider)
	assert.Equal(t, "whisper-1", cfg.STT.Model)
	assert.Equal(t, TTSProviderOpenAI, cfg.TTS.Provider)
	assert.Equal(t, "en", cfg.TTS.DefaultSource)

	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UI_ORIGIN", "https://ui.example.org, https://admin.example.org")
	t.Setenv("MAX_UPLOAD_SIZE", "5MiB")
	t.Setenv("TRANSLATION_BASE_URL", "http://llama:8080/v1")
	t.Setenv("TRANSLATION_MODEL", "model.gguf")
	t.Setenv("STT_PROVIDER", "Faster-Whisper")
	t.Setenv("WHISPER_URL", "http://whisper:8387")
	t.Setenv("SERIALIZE_STT", "true")
	t.Setenv("TTS_PROVIDER", "elevenlabs")
	t.Setenv("ELEVENLABS_API_KEY", "xi-test")
	t.Setenv("STT_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://ui.example.org", "https://admin.example.org"}, cfg.UIOrigins)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, "http://llama:8080/v1", cfg.Translation.BaseURL)
	assert.Equal(t, "model.gguf", cfg.Translation.Model)
	assert.Equal(t, STTProviderFasterWhisper, cfg.STT.Provider)
	assert.True(t, cfg.STT.Serialize)
	assert.Equal(t, 90*time.Second, cfg.STT.Timeout)
	assert.Equal(t, TTSProviderElevenLabs, cfg.TTS.Provider)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadUploadSize(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_UPLOAD_SIZE")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:           "8000",
			MaxUploadBytes: 1,
			Translation:    TranslationConfig{APIKey: "k"},
			STT:            STTConfig{Provider: STTProviderOpenAI, APIKey: "k"},
			TTS:            TTSConfig{Provider: TTSProviderOpenAI, APIKey: "k"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no translation key", func(c *Config) { c.Translation.APIKey = "" }, "TRANSLATION_BASE_URL"},
		{"self-hosted translation", func(c *Config) {
			c.Translation.APIKey = ""
			c.Translation.BaseURL = "http://llama:8080/v1"
		}, ""},
		{"unknown stt", func(c *Config) { c.STT.Provider = "vosk" }, `unknown STT_PROVIDER "vosk"`},
		{"whisper without url", func(c *Config) { c.STT.Provider = STTProviderFasterWhisper }, "WHISPER_URL"},
		{"elevenlabs without key", func(c *Config) { c.TTS.Provider = TTSProviderElevenLabs }, "ELEVENLABS_API_KEY"},
		{"zero upload", func(c *Config) { c.MaxUploadBytes = 0 }, "MAX_UPLOAD_SIZE"},
		{"request deadline below chain", func(c *Config) {
			c.RequestTimeout = 2 * time.Minute
			c.STT.Timeout = 120 * time.Second
			c.Translation.Timeout = 60 * time.Second
		}, "REQUEST_TIMEOUT"},
		{"request deadline covers chain", func(c *Config) {
			c.RequestTimeout = 4 * time.Minute
			c.STT.Timeout = 120 * time.Second
			c.TTS.Timeout = 60 * time.Second
			c.Translation.Timeout = 60 * time.Second
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
