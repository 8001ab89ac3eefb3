package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/medassist/internal/apperr"
	"github.com/Vovarama1992/medassist/internal/languages"
)

func newSynthesis(t *testing.T, s *fakeSynthesizer, tr Translator) (*SynthesisService, string) {
	dir := t.TempDir()
	return NewSynthesisService(s, tr, languages.Default(), NewScratch(dir), "", nil, nil, nil, nil), dir
}

func TestSynthesize_TranslatesThenSpeaks(t *testing.T) {
	s := &fakeSynthesizer{audio: []byte("RIFFwav")}
	tr := &fakeTranslator{out: "Prenez ce médicament deux fois par jour"}
	svc, dir := newSynthesis(t, s, tr)

	res, err := svc.Synthesize(context.Background(), "Take this medication twice daily", "", "fr")
	require.NoError(t, err)

	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "Prenez ce médicament deux fois par jour", s.last.Text)
	assert.Equal(t, s.last.Text, res.Transcript)
	assert.Equal(t, "fr", s.last.Voice)
	assert.Equal(t, "fr", s.last.Language)

	assert.Equal(t, []byte("RIFFwav"), res.Audio)
	assert.Equal(t, "audio/wav", res.ContentType)
	assert.Equal(t, "en", res.SourceLang)
	assert.Equal(t, "fr", res.TargetLang)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "output file must be removed")
}

func TestSynthesize_SameLanguageSkipsTranslation(t *testing.T) {
	s := &fakeSynthesizer{audio: []byte("x")}
	tr := &fakeTranslator{}
	svc, _ := newSynthesis(t, s, tr)

	res, err := svc.Synthesize(context.Background(), "你好", "zh", "zh")
	require.NoError(t, err)
	assert.Zero(t, tr.calls)
	assert.Equal(t, "你好", res.Transcript)
	assert.Equal(t, "zh-CN", res.Voice)
}

func TestSynthesize_UnsupportedTargetNeverCallsCollaborators(t *testing.T) {
	s := &fakeSynthesizer{audio: []byte("x")}
	tr := &fakeTranslator{}
	svc, _ := newSynthesis(t, s, tr)

	_, err := svc.Synthesize(context.Background(), "hello", "en", "xx")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindUnsupportedLanguage, e.Kind)
	assert.Equal(t, "xx", e.Details["code"])
	assert.Zero(t, s.calls)
	assert.Zero(t, tr.calls)
}

func TestSynthesize_Failures(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		svc, _ := newSynthesis(t, &fakeSynthesizer{}, &fakeTranslator{})
		_, err := svc.Synthesize(context.Background(), " ", "en", "en")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("synthesizer error", func(t *testing.T) {
		s := &fakeSynthesizer{err: errors.New("tts failed (status 401 after 20ms): bad key")}
		svc, dir := newSynthesis(t, s, &fakeTranslator{})
		_, err := svc.Synthesize(context.Background(), "hello", "en", "en")
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindSynthesis, e.Kind)
		assert.Contains(t, e.Message, "credentials")

		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries)
	})

	t.Run("no audio produced", func(t *testing.T) {
		s := &fakeSynthesizer{audio: []byte{}}
		svc, _ := newSynthesis(t, s, &fakeTranslator{})
		_, err := svc.Synthesize(context.Background(), "hello", "en", "en")
		assert.Equal(t, apperr.KindSynthesis, apperr.KindOf(err))
	})

	t.Run("translation error surfaces as is", func(t *testing.T) {
		tr := &fakeTranslator{err: apperr.Translation("translation failed", errors.New("x"))}
		s := &fakeSynthesizer{audio: []byte("x")}
		svc, _ := newSynthesis(t, s, tr)
		_, err := svc.Synthesize(context.Background(), "hello", "en", "de")
		assert.Equal(t, apperr.KindTranslation, apperr.KindOf(err))
		assert.Zero(t, s.calls)
	})
}

func TestScratch_PathIsUnique(t *testing.T) {
	sc := NewScratch(t.TempDir())
	a, err := sc.Path("stt", "WAV")
	require.NoError(t, err)
	b, err := sc.Path("stt", ".wav")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, sc.Dir(), filepath.Dir(a))
}

func TestScratch_WriteFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	sc := NewScratch(dir)

	orig := writeFile
	t.Cleanup(func() { writeFile = orig })
	writeFile = func(name string, data []byte, perm os.FileMode) error {
		_ = orig(name, data[:1], perm)
		return errors.New("disk full")
	}

	path, cleanup, err := sc.Write("stt", ".wav", []byte("RIFFdata"))
	require.Error(t, err)
	assert.Empty(t, path)
	require.NotNil(t, cleanup)
	cleanup()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
