package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
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

var errNoAudio = errors.New("synthesizer produced no audio")

// SynthesisService speaks text in the target language. Input text is taken
// to be in the source language (defaultSource when not given) and is
// translated first when the languages differ.
type SynthesisService struct {
	synthesizer   ports.Synthesizer
	translator    Translator
	registry      *languages.Registry
	scratch       *Scratch
	defaultSource string
	gate          *gate.Gate
	notifier      notificator.Notificator
	metrics       *metrics.Metrics
	log           *zap.SugaredLogger
}

func NewSynthesisService(
	synthesizer ports.Synthesizer,
	translator Translator,
	registry *languages.Registry,
	scratch *Scratch,
	defaultSource string,
	g *gate.Gate,
	notifier notificator.Notificator,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
) *SynthesisService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if defaultSource == "" {
		defaultSource = "en"
	}
	return &SynthesisService{
		synthesizer:   synthesizer,
		translator:    translator,
		registry:      registry,
		scratch:       scratch,
		defaultSource: defaultSource,
		gate:          g,
		notifier:      notifier,
		metrics:       m,
		log:           log,
	}
}

func (s *SynthesisService) Synthesize(ctx context.Context, text, sourceLang, targetLang string) (SynthesisResult, error) {
	if strings.TrimSpace(text) == "" {
		return SynthesisResult{}, apperr.MissingField("text")
	}
	if sourceLang == "" {
		sourceLang = s.defaultSource
	}

	voice, err := s.registry.Voice(targetLang)
	if err != nil {
		return SynthesisResult{}, apperr.From(err)
	}
	if err := s.registry.Validate(sourceLang); err != nil {
		return SynthesisResult{}, apperr.From(err)
	}

	spoken := text
	if sourceLang != targetLang {
		tr, err := s.translator.Translate(ctx, text, sourceLang, targetLang)
		if err != nil {
			return SynthesisResult{}, err
		}
		spoken = tr.TranslatedText
	}

	outPath, err := s.scratch.Path("tts", ".audio")
	if err != nil {
		return SynthesisResult{}, apperr.Internal(err)
	}
	defer os.Remove(outPath)

	start := time.Now()
	var contentType string
	err = s.gate.Do(func() error {
		var callErr error
		contentType, callErr = s.synthesizer.Synthesize(ctx, ports.SynthesisRequest{
			Text:     spoken,
			Voice:    voice,
			Language: targetLang,
			OutPath:  outPath,
		})
		return callErr
	})
	if err != nil {
		return SynthesisResult{}, s.fail(ctx, targetLang, voice, err)
	}

	audio, err := os.ReadFile(outPath)
	if err == nil && len(audio) == 0 {
		err = errNoAudio
	}
	if err != nil {
		return SynthesisResult{}, s.fail(ctx, targetLang, voice, err)
	}

	if s.metrics != nil {
		s.metrics.AudioBytesProduced.Add(float64(len(audio)))
	}
	s.log.Infow("synthesis done",
		"source", sourceLang,
		"target", targetLang,
		"voice", voice,
		"bytes", len(audio),
		"synthesizer", s.synthesizer.Name(),
		"took", time.Since(start),
	)

	return SynthesisResult{
		Audio:       audio,
		ContentType: contentType,
		Transcript:  spoken,
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
		Voice:       voice,
	}, nil
}

func (s *SynthesisService) fail(ctx context.Context, lang, voice string, err error) error {
	diag := notificator.Diagnose(err)
	notify(ctx, s.notifier, metrics.Synthesis, err,
		fmt.Sprintf("%s voice %s via %s: %s", lang, voice, s.synthesizer.Name(), diag))
	return apperr.Synthesis("speech synthesis failed: "+diag, err)
}
