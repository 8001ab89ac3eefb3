package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vovarama1992/medassist/internal/config"
	"github.com/Vovarama1992/medassist/internal/ports"
)

const elevenLabsURL = "https://api.elevenlabs.io"

type ElevenLabsClient struct {
	apiKey  string
	voiceID string
	model   string
	baseURL string
	client  *http.Client
}

func NewElevenLabsClient(cfg config.TTSConfig) *ElevenLabsClient {
	return &ElevenLabsClient{
		apiKey:  cfg.ElevenLabsKey,
		voiceID: cfg.ElevenLabsVoice,
		model:   cfg.ElevenLabsModel,
		baseURL: elevenLabsURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// WithBaseURL points the client at another host (tests, proxies).
func (c *ElevenLabsClient) WithBaseURL(u string) *ElevenLabsClient {
	c.baseURL = u
	return c
}

func (c *ElevenLabsClient) Name() string { return "elevenlabs:" + c.model }

type elevenLabsRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// TEXT → SPEECH
// The multilingual model picks pronunciation from language_code; the voice
// id stays the configured one.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, req ports.SynthesisRequest) (string, error) {
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)

	payload, err := json.Marshal(elevenLabsRequest{
		Text:         req.Text,
		ModelID:      c.model,
		LanguageCode: req.Language,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("tts failed (status %d after %s): %s", resp.StatusCode, time.Since(start).Round(time.Millisecond), string(b))
	}

	if err := writeAudio(req.OutPath, resp.Body); err != nil {
		return "", err
	}
	return "audio/mpeg", nil
}
