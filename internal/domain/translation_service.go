package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/medassist/internal/apperr"
	notificator "github.com/Vovarama1992/medassist/internal/error_notificator"
	"github.com/Vovarama1992/medassist/internal/gate"
	"github.com/Vovarama1992/medassist/internal/languages"
	"github.com/Vovarama1992/medassist/internal/metrics"
	"github.com/Vovarama1992/medassist/internal/ports"
)

// IdentityModel is reported as model_used when no model was called.
const IdentityModel = "identity"

const promptTemplate = `You are a specialized medical translation assistant. Please translate the following medical text:

Source Language: %s (%s)
Target Language: %s (%s)

Original Text:
%s

Requirements:
- Maintain medical terminology accuracy
- Preserve formal medical tone
- Keep formatting and punctuation
- Ensure cultural appropriateness
- Reply with the translation only

Translation:`

// template labels the model tends to echo back
var leakageMarkers = []string{"Translation:", "Source Language:", "Target Language:", "Original Text:"}

type TranslationParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	Stop        []string
	// Model is reported when the backend does not name one.
	Model string
}

func DefaultTranslationParams() TranslationParams {
	return TranslationParams{
		MaxTokens:   512,
		Temperature: 0.3,
		TopP:        0.95,
		Stop:        []string{"\n\n"},
	}
}

type TranslationService struct {
	completer ports.Completer
	registry  *languages.Registry
	params    TranslationParams
	gate      *gate.Gate
	notifier  notificator.Notificator
	metrics   *metrics.Metrics
	log       *zap.SugaredLogger
}

func NewTranslationService(
	completer ports.Completer,
	registry *languages.Registry,
	params TranslationParams,
	g *gate.Gate,
	notifier notificator.Notificator,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
) *TranslationService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &TranslationService{
		completer: completer,
		registry:  registry,
		params:    params,
		gate:      g,
		notifier:  notifier,
		metrics:   m,
		log:       log,
	}
}

func (s *TranslationService) Translate(ctx context.Context, text, source, target string) (TranslationResult, error) {
	if err := s.registry.Validate(source, target); err != nil {
		return TranslationResult{}, apperr.From(err)
	}

	// identity holds for any text, blank included
	if source == target {
		if s.metrics != nil {
			s.metrics.IdentityShortCircuit.Inc()
		}
		return TranslationResult{
			TranslatedText: text,
			SourceLang:     source,
			TargetLang:     target,
			Confidence:     1.0,
			ModelUsed:      IdentityModel,
		}, nil
	}

	if strings.TrimSpace(text) == "" {
		return TranslationResult{}, apperr.MissingField("text")
	}

	prompt, err := s.BuildPrompt(text, source, target)
	if err != nil {
		return TranslationResult{}, apperr.From(err)
	}

	start := time.Now()
	var resp ports.CompletionResponse
	err = s.gate.Do(func() error {
		var callErr error
		resp, callErr = s.completer.Complete(ctx, ports.CompletionRequest{
			Prompt:      prompt,
			MaxTokens:   s.params.MaxTokens,
			Temperature: s.params.Temperature,
			TopP:        s.params.TopP,
			Stop:        s.params.Stop,
		})
		return callErr
	})
	if err != nil {
		diag := notificator.Diagnose(err)
		notify(ctx, s.notifier, metrics.Translation,
			err, fmt.Sprintf("%s→%s via %s: %s", source, target, s.completer.Name(), diag))
		return TranslationResult{}, apperr.Translation("translation failed: "+diag, err)
	}

	translated := Dedup(CleanOutput(resp.Text))
	if translated == "" {
		err := fmt.Errorf("model %s returned no usable text", s.completer.Name())
		notify(ctx, s.notifier, metrics.Translation, err, "empty translation")
		return TranslationResult{}, apperr.Translation("the model returned an empty translation", err)
	}

	model := resp.Model
	if model == "" {
		model = s.params.Model
	}

	s.log.Infow("translation done",
		"source", source,
		"target", target,
		"model", model,
		"chars_in", len(text),
		"chars_out", len(translated),
		"took", time.Since(start),
	)

	return TranslationResult{
		TranslatedText: translated,
		SourceLang:     source,
		TargetLang:     target,
		Confidence:     Confidence(resp.TokenLogProbs),
		ModelUsed:      model,
	}, nil
}

// BuildPrompt renders the medical translation prompt. Both languages must be
// registered.
func (s *TranslationService) BuildPrompt(text, source, target string) (string, error) {
	srcName, err := s.registry.Name(source)
	if err != nil {
		return "", err
	}
	dstName, err := s.registry.Name(target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, source, srcName, target, dstName, text), nil
}

// CleanOutput strips template labels the model echoed and trims whitespace.
func CleanOutput(raw string) string {
	out := strings.TrimSpace(raw)
	for _, m := range leakageMarkers {
		out = strings.TrimSpace(strings.ReplaceAll(out, m, ""))
	}
	return out
}

// Dedup drops sentences (split on ". ") that repeat an earlier one verbatim.
// Dedup(Dedup(x)) == Dedup(x).
func Dedup(text string) string {
	parts := strings.Split(text, ". ")
	seen := make(map[string]struct{}, len(parts))
	kept := parts[:0]
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		kept = append(kept, p)
	}
	return strings.Join(kept, ". ")
}

// Confidence is exp(mean token log-probability) clamped to [0,1], or 0 when
// the backend reported none.
func Confidence(tokenLogProbs []float64) float64 {
	if len(tokenLogProbs) == 0 {
		return 0.0
	}
	var sum float64
	for _, lp := range tokenLogProbs {
		sum += lp
	}
	return clamp01(math.Exp(sum / float64(len(tokenLogProbs))))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
