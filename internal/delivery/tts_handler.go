package delivery

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const endpointTTS = "tts"

type ttsRequest struct {
	Text           string `json:"text" validate:"required"`
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language"`
}

type ttsResponse struct {
	Success     bool   `json:"success"`
	AudioFile   string `json:"audio_file"`
	ContentType string `json:"content_type"`
	Transcript  string `json:"transcript"`
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
}

var audioExt = map[string]string{
	"audio/wav":  ".wav",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
}

// TTS answers with base64 audio in JSON; ?format=file streams the audio
// itself as an attachment.
func (h *Handler) TTS(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ttsRequest
	err := decodeBody(w, r, &req, formFields{
		"text":            &req.Text,
		"target_language": &req.TargetLanguage,
		"source_language": &req.SourceLanguage,
	})
	if err == nil {
		err = h.checkStruct(req)
	}
	if err != nil {
		h.failEnvelope(w, r, endpointTTS, err)
		return
	}
	req.TargetLanguage = withDefault(req.TargetLanguage, "en")
	h.stage(r, endpointTTS, "validated",
		"source", req.SourceLanguage, "target", req.TargetLanguage, "chars", len(req.Text))

	res, err := h.speaker.Synthesize(r.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		h.failEnvelope(w, r, endpointTTS, err)
		return
	}
	h.stage(r, endpointTTS, "dispatched", "voice", res.Voice, "bytes", len(res.Audio))

	if r.URL.Query().Get("format") == "file" {
		ext := audioExt[res.ContentType]
		if ext == "" {
			ext = ".bin"
		}
		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="output`+ext+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Audio)))
		// percent-encoded, header values are ASCII only
		w.Header().Set("X-Transcript", url.PathEscape(res.Transcript))
		w.Header().Set("X-Transcript-Language", res.TargetLang)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Audio)
	} else {
		writeJSON(w, http.StatusOK, ttsResponse{
			Success:     true,
			AudioFile:   base64.StdEncoding.EncodeToString(res.Audio),
			ContentType: res.ContentType,
			Transcript:  res.Transcript,
			SourceLang:  res.SourceLang,
			TargetLang:  res.TargetLang,
		})
	}
	h.stage(r, endpointTTS, "respond", "status", http.StatusOK, "took", time.Since(start))
}
