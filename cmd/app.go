package main

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Vovarama1992/medassist/internal/config"
	"github.com/Vovarama1992/medassist/internal/domain"
	"github.com/Vovarama1992/medassist/internal/error_notificator"
	"github.com/Vovarama1992/medassist/internal/gate"
	"github.com/Vovarama1992/medassist/internal/infra"
	"github.com/Vovarama1992/medassist/internal/languages"
	"github.com/Vovarama1992/medassist/internal/medical"
	"github.com/Vovarama1992/medassist/internal/metrics"
	"github.com/Vovarama1992/medassist/internal/ports"
)

type app struct {
	registry      *languages.Registry
	metrics       *metrics.Metrics
	translation   *domain.TranslationService
	transcription *domain.TranscriptionService
	synthesis     *domain.SynthesisService
}

func buildApp(ctx context.Context, cfg *config.Config, zl *logger.ZapLogger, sugar *zap.SugaredLogger) (*app, error) {

	// =========================================================================
	// METRICS / ERROR NOTIFICATION
	// =========================================================================

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	errInfra := error_notificator.NewInfra(zl, m)
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// CLIENTS (LLM / STT / TTS)
	// =========================================================================

	completer := infra.NewOpenAIChat(cfg.Translation)

	var recognizer ports.Recognizer
	switch cfg.STT.Provider {
	case config.STTProviderFasterWhisper:
		sidecar := infra.NewWhisperSidecar(cfg.STT)
		if !sidecar.Available(ctx) {
			sugar.Warnw("whisper sidecar not reachable yet", "url", cfg.STT.WhisperURL)
		}
		recognizer = sidecar
	case config.STTProviderOpenAI:
		recognizer = infra.NewOpenAIWhisper(cfg.STT)
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.STT.Provider)
	}

	var synthesizer ports.Synthesizer
	switch cfg.TTS.Provider {
	case config.TTSProviderElevenLabs:
		synthesizer = infra.NewElevenLabsClient(cfg.TTS)
	case config.TTSProviderOpenAI:
		synthesizer = infra.NewOpenAISpeech(cfg.TTS)
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", cfg.TTS.Provider)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	registry := languages.Default()
	scratch := domain.NewScratch(cfg.ScratchDir)

	params := domain.DefaultTranslationParams()
	params.MaxTokens = cfg.Translation.MaxTokens
	params.Temperature = cfg.Translation.Temperature
	params.TopP = cfg.Translation.TopP
	params.Model = cfg.Translation.Model

	translation := domain.NewTranslationService(
		completer,
		registry,
		params,
		gate.New(metrics.Translation, cfg.Translation.Serialize, m),
		errService,
		m,
		sugar,
	)

	transcription := domain.NewTranscriptionService(
		recognizer,
		translation,
		registry,
		scratch,
		medical.NewExtractor(),
		gate.New(metrics.Recognition, cfg.STT.Serialize, m),
		errService,
		m,
		sugar,
	)

	synthesis := domain.NewSynthesisService(
		synthesizer,
		translation,
		registry,
		scratch,
		cfg.TTS.DefaultSource,
		gate.New(metrics.Synthesis, cfg.TTS.Serialize, m),
		errService,
		m,
		sugar,
	)

	sugar.Infow("collaborators ready",
		"translation", completer.Name(),
		"stt", recognizer.Name(),
		"tts", synthesizer.Name(),
		"scratch_dir", scratch.Dir(),
	)

	return &app{
		registry:      registry,
		metrics:       m,
		translation:   translation,
		transcription: transcription,
		synthesis:     synthesis,
	}, nil
}
