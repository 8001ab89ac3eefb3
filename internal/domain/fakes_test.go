package domain

import (
	"context"
	"os"
	"sync"

	"github.com/Vovarama1992/medassist/internal/ports"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	last  ports.CompletionRequest
	resp  ports.CompletionResponse
	err   error
}

func (f *fakeCompleter) Name() string { return "fake-llm" }

func (f *fakeCompleter) Complete(_ context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	return f.resp, f.err
}

type fakeRecognizer struct {
	calls   int
	last    ports.RecognitionRequest
	sawFile bool
	resp    ports.RecognitionResponse
	err     error
}

func (f *fakeRecognizer) Name() string { return "fake-whisper" }

func (f *fakeRecognizer) Recognize(_ context.Context, req ports.RecognitionRequest) (ports.RecognitionResponse, error) {
	f.calls++
	f.last = req
	_, statErr := os.Stat(req.AudioPath)
	f.sawFile = statErr == nil
	return f.resp, f.err
}

type fakeSynthesizer struct {
	calls int
	last  ports.SynthesisRequest
	audio []byte
	err   error
}

func (f *fakeSynthesizer) Name() string { return "fake-tts" }

func (f *fakeSynthesizer) Synthesize(_ context.Context, req ports.SynthesisRequest) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(req.OutPath, f.audio, 0o600); err != nil {
		return "", err
	}
	return "audio/wav", nil
}

type fakeTranslator struct {
	calls int
	out   string
	err   error
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) (TranslationResult, error) {
	f.calls++
	if f.err != nil {
		return TranslationResult{}, f.err
	}
	return TranslationResult{TranslatedText: f.out, SourceLang: source, TargetLang: target}, nil
}
