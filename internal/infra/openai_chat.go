package infra

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/medassist/internal/config"
	"github.com/Vovarama1992/medassist/internal/ports"
)

var ErrEmptyCompletion = errors.New("completion returned no choices")

// OpenAIChat talks to the OpenAI chat completions API or any compatible
// server (llama.cpp, vLLM) when BaseURL is set.
type OpenAIChat struct {
	client   *openai.Client
	model    string
	logProbs bool
	timeout  time.Duration
}

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	if apiKey == "" {
		// local servers ignore the key but the client insists on one
		apiKey = "local"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func NewOpenAIChat(cfg config.TranslationConfig) *OpenAIChat {
	return &OpenAIChat{
		client:   newOpenAIClient(cfg.APIKey, cfg.BaseURL),
		model:    cfg.Model,
		logProbs: cfg.LogProbs,
		timeout:  cfg.Timeout,
	}
}

func (c *OpenAIChat) Name() string { return c.model }

func (c *OpenAIChat) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		LogProbs:    c.logProbs,
	})
	if err != nil {
		return ports.CompletionResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return ports.CompletionResponse{}, ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	out := ports.CompletionResponse{
		Text:  choice.Message.Content,
		Model: resp.Model,
	}
	if choice.LogProbs != nil {
		for _, lp := range choice.LogProbs.Content {
			out.TokenLogProbs = append(out.TokenLogProbs, lp.LogProb)
		}
	}
	if out.Model == "" {
		out.Model = c.model
	}
	return out, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
