package ports

import "context"

type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
	TopP        float32
	Stop        []string
}

type CompletionResponse struct {
	Text  string
	Model string
	// TokenLogProbs is empty when the backend does not report log-probabilities.
	TokenLogProbs []float64
}

// Completer is a text-completion backend (hosted or local).
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Name() string
}
