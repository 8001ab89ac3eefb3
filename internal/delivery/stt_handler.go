package delivery

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vovarama1992/medassist/internal/apperr"
	"github.com/Vovarama1992/medassist/internal/domain"
)

const (
	endpointSTT = "stt"
	// room for multipart boundaries and the language fields
	multipartOverhead = 64 << 10
)

// .webm and .m4a are what browser MediaRecorders produce
var allowedAudio = map[string]bool{".wav": true, ".mp3": true, ".ogg": true, ".webm": true, ".m4a": true}

type sttResponse struct {
	Success           bool             `json:"success"`
	Text              string           `json:"text"`
	OriginalText      string           `json:"original_text"`
	TranslatedText    string           `json:"translated_text,omitempty"`
	Confidence        float64          `json:"confidence"`
	DisplayConfidence float64          `json:"display_confidence"`
	Language          string           `json:"language"`
	SourceLanguage    string           `json:"source_language"`
	Duration          float64          `json:"duration"`
	Segments          []domain.Segment `json:"segments"`
	FileProcessed     string           `json:"file_processed"`
	MedicalTerms      []string         `json:"medical_terms"`
}

func (h *Handler) STT(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := h.upload.MaxBytes

	if r.ContentLength > limit+multipartOverhead {
		h.failEnvelope(w, r, endpointSTT, apperr.TooLarge(h.upload.Label))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		if tooLarge(err) {
			err = apperr.TooLarge(h.upload.Label)
		} else {
			err = apperr.Validation("expected a multipart form with an audio_file field")
		}
		h.failEnvelope(w, r, endpointSTT, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		h.failEnvelope(w, r, endpointSTT, apperr.MissingField("audio_file"))
		return
	}
	defer file.Close()

	if !allowedAudio[strings.ToLower(filepath.Ext(header.Filename))] {
		h.failEnvelope(w, r, endpointSTT,
			apperr.Validation("Supported formats: WAV, MP3, OGG, WEBM, M4A").WithDetail("file", header.Filename))
		return
	}
	if header.Size > limit {
		h.failEnvelope(w, r, endpointSTT, apperr.TooLarge(h.upload.Label))
		return
	}

	audio, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.failEnvelope(w, r, endpointSTT, apperr.Internal(err))
		return
	}
	if int64(len(audio)) > limit {
		h.failEnvelope(w, r, endpointSTT, apperr.TooLarge(h.upload.Label))
		return
	}

	inLang := withDefault(strings.TrimSpace(r.FormValue("input_language")), "en")
	outLang := withDefault(strings.TrimSpace(r.FormValue("output_language")), "en")
	if err := h.registry.Validate(inLang, outLang); err != nil {
		h.failEnvelope(w, r, endpointSTT, err)
		return
	}
	h.stage(r, endpointSTT, "validated",
		"file", header.Filename, "bytes", len(audio), "input", inLang, "output", outLang)

	res, err := h.transcriber.Transcribe(r.Context(), audio, header.Filename, inLang, outLang)
	if err != nil {
		h.failEnvelope(w, r, endpointSTT, err)
		return
	}
	h.stage(r, endpointSTT, "dispatched", "segments", len(res.Segments), "translated", res.TranslatedText != "")

	writeJSON(w, http.StatusOK, sttResponse{
		Success:           true,
		Text:              res.Text,
		OriginalText:      res.OriginalText,
		TranslatedText:    res.TranslatedText,
		Confidence:        res.Confidence,
		DisplayConfidence: domain.DisplayConfidence(res.Confidence),
		Language:          res.Language,
		SourceLanguage:    res.SourceLanguage,
		Duration:          res.Duration,
		Segments:          res.Segments,
		FileProcessed:     header.Filename,
		MedicalTerms:      res.MedicalTerms,
	})
	h.stage(r, endpointSTT, "respond", "status", http.StatusOK, "took", time.Since(start))
}
