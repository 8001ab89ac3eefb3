package domain

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/medassist/internal/apperr"
	notificator "github.com/Vovarama1992/medassist/internal/error_notificator"
	"github.com/Vovarama1992/medassist/internal/gate"
	"github.com/Vovarama1992/medassist/internal/languages"
	"github.com/Vovarama1992/medassist/internal/medical"
	"github.com/Vovarama1992/medassist/internal/metrics"
	"github.com/Vovarama1992/medassist/internal/ports"
)

type Translator interface {
	Translate(ctx context.Context, text, source, target string) (TranslationResult, error)
}

type TranscriptionService struct {
	recognizer ports.Recognizer
	translator Translator
	registry   *languages.Registry
	scratch    *Scratch
	terms      *medical.Extractor
	gate       *gate.Gate
	notifier   notificator.Notificator
	metrics    *metrics.Metrics
	log        *zap.SugaredLogger
}

func NewTranscriptionService(
	recognizer ports.Recognizer,
	translator Translator,
	registry *languages.Registry,
	scratch *Scratch,
	terms *medical.Extractor,
	g *gate.Gate,
	notifier notificator.Notificator,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
) *TranscriptionService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if terms == nil {
		terms = medical.NewExtractor()
	}
	return &TranscriptionService{
		recognizer: recognizer,
		translator: translator,
		registry:   registry,
		scratch:    scratch,
		terms:      terms,
		gate:       g,
		notifier:   notifier,
		metrics:    m,
		log:        log,
	}
}

// Transcribe recognizes speech in inputLang and, when outputLang differs,
// translates the transcript. Segments always stay in the source language.
func (s *TranscriptionService) Transcribe(ctx context.Context, audio []byte, filename, inputLang, outputLang string) (TranscriptionResult, error) {
	if len(audio) == 0 {
		return TranscriptionResult{}, apperr.Validation("audio file is empty").WithDetail("field", "audio_file")
	}
	if err := s.registry.Validate(inputLang, outputLang); err != nil {
		return TranscriptionResult{}, apperr.From(err)
	}
	if s.metrics != nil {
		s.metrics.AudioBytesReceived.Add(float64(len(audio)))
	}

	path, cleanup, err := s.scratch.Write("stt", filepath.Ext(filename), audio)
	defer cleanup()
	if err != nil {
		return TranscriptionResult{}, apperr.Internal(err)
	}

	start := time.Now()
	var resp ports.RecognitionResponse
	err = s.gate.Do(func() error {
		var callErr error
		resp, callErr = s.recognizer.Recognize(ctx, ports.RecognitionRequest{
			AudioPath: path,
			Language:  inputLang,
		})
		return callErr
	})
	if err != nil {
		diag := notificator.Diagnose(err)
		notify(ctx, s.notifier, metrics.Recognition, err,
			fmt.Sprintf("%s (%d bytes, %s) via %s: %s", filename, len(audio), inputLang, s.recognizer.Name(), diag))
		return TranscriptionResult{}, apperr.Transcription("speech recognition failed: "+diag, err)
	}

	segments := make([]Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = Segment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			AvgLogProb: seg.AvgLogProb,
		}
	}
	transcript := JoinSegments(segments)
	if transcript == "" {
		transcript = strings.TrimSpace(resp.Text)
	}

	result := TranscriptionResult{
		Text:           transcript,
		OriginalText:   transcript,
		Confidence:     SegmentConfidence(segments),
		SourceLanguage: inputLang,
		Language:       outputLang,
		Duration:       resp.Duration,
		Segments:       segments,
	}

	s.log.Infow("transcription done",
		"language", inputLang,
		"segments", len(segments),
		"chars", len(transcript),
		"recognizer", s.recognizer.Name(),
		"took", time.Since(start),
	)

	if outputLang != inputLang && transcript != "" {
		tr, err := s.translator.Translate(ctx, transcript, inputLang, outputLang)
		if err != nil {
			return TranscriptionResult{}, err
		}
		result.TranslatedText = tr.TranslatedText
		result.Text = tr.TranslatedText
	}

	result.MedicalTerms = s.terms.Extract(result.Text)
	return result, nil
}

// JoinSegments joins trimmed segment texts with single spaces, in order.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// SegmentConfidence is the mean of the segments' average log-probabilities,
// capped at 0, and 0 when there are none.
func SegmentConfidence(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0.0
	}
	var sum float64
	for _, seg := range segments {
		sum += seg.AvgLogProb
	}
	return math.Min(sum/float64(len(segments)), 0)
}

// DisplayConfidence maps a mean log-probability to [0,1] for the UI.
func DisplayConfidence(raw float64) float64 {
	return clamp01(math.Exp(raw))
}
