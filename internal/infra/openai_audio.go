package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/medassist/internal/config"
	"github.com/Vovarama1992/medassist/internal/ports"
)

// OpenAIWhisper transcribes through the audio transcriptions endpoint with
// verbose_json so per-segment log-probabilities come back.
type OpenAIWhisper struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIWhisper(cfg config.STTConfig) *OpenAIWhisper {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIWhisper{
		client:  newOpenAIClient(cfg.APIKey, cfg.BaseURL),
		model:   model,
		timeout: cfg.Timeout,
	}
}

func (w *OpenAIWhisper) Name() string { return w.model }

func (w *OpenAIWhisper) Recognize(ctx context.Context, req ports.RecognitionRequest) (ports.RecognitionResponse, error) {
	ctx, cancel := withTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: req.AudioPath,
		Language: req.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return ports.RecognitionResponse{}, err
	}

	out := ports.RecognitionResponse{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
		Segments: make([]ports.RecognizedSegment, 0, len(resp.Segments)),
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, ports.RecognizedSegment{
			Start:      s.Start,
			End:        s.End,
			Text:       s.Text,
			AvgLogProb: s.AvgLogprob,
		})
	}
	return out, nil
}

// OpenAISpeech synthesizes WAV audio through the speech endpoint. The voice
// is the configured OpenAI voice; the language follows the input text.
type OpenAISpeech struct {
	client  *openai.Client
	model   string
	voice   string
	speed   float64
	timeout time.Duration
}

func NewOpenAISpeech(cfg config.TTSConfig) *OpenAISpeech {
	return &OpenAISpeech{
		client:  newOpenAIClient(cfg.APIKey, cfg.BaseURL),
		model:   cfg.Model,
		voice:   cfg.Voice,
		speed:   cfg.Speed,
		timeout: cfg.Timeout,
	}
}

func (s *OpenAISpeech) Name() string { return s.model }

func (s *OpenAISpeech) Synthesize(ctx context.Context, req ports.SynthesisRequest) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
		Speed:          s.speed,
	})
	if err != nil {
		return "", err
	}
	defer resp.Close()

	if err := writeAudio(req.OutPath, resp); err != nil {
		return "", err
	}
	return "audio/wav", nil
}

// writeAudio copies r into path and closes the file before returning, so the
// caller can read it back right away.
func writeAudio(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write audio file: %w", err)
	}
	return out.Close()
}
