package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Vovarama1992/medassist/internal/config"
	"github.com/Vovarama1992/medassist/internal/ports"
)

const defaultWhisperTimeout = 120 * time.Second

// WhisperSidecar calls a local faster-whisper HTTP sidecar.
type WhisperSidecar struct {
	url       string
	model     string
	beamSize  int
	vadFilter bool
	client    *http.Client
}

func NewWhisperSidecar(cfg config.STTConfig) *WhisperSidecar {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultWhisperTimeout
	}
	return &WhisperSidecar{
		url:       cfg.WhisperURL,
		model:     cfg.Model,
		beamSize:  cfg.BeamSize,
		vadFilter: cfg.VADFilter,
		client:    &http.Client{Timeout: timeout},
	}
}

func (w *WhisperSidecar) Name() string { return "faster-whisper:" + w.model }

// Available reports whether the sidecar answers its health check.
func (w *WhisperSidecar) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (w *WhisperSidecar) Recognize(ctx context.Context, req ports.RecognitionRequest) (ports.RecognitionResponse, error) {
	audio, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return ports.RecognitionResponse{}, fmt.Errorf("read audio file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return ports.RecognitionResponse{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return ports.RecognitionResponse{}, fmt.Errorf("write audio data: %w", err)
	}

	_ = writer.WriteField("model", w.model)
	if req.Language != "" {
		_ = writer.WriteField("language", req.Language)
	}
	if w.beamSize > 0 {
		_ = writer.WriteField("beam_size", strconv.Itoa(w.beamSize))
	}
	_ = writer.WriteField("vad_filter", strconv.FormatBool(w.vadFilter))
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url+"/transcribe", &buf)
	if err != nil {
		return ports.RecognitionResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return ports.RecognitionResponse{}, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ports.RecognitionResponse{}, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	var result whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ports.RecognitionResponse{}, fmt.Errorf("decode whisper response: %w", err)
	}

	return result.toRecognition(), nil
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	AvgLogProb float64 `json:"avg_logprob"`
}

func (r *whisperResponse) toRecognition() ports.RecognitionResponse {
	segments := make([]ports.RecognizedSegment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = ports.RecognizedSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			AvgLogProb: seg.AvgLogProb,
		}
	}

	var duration float64
	if len(r.Segments) > 0 {
		duration = r.Segments[len(r.Segments)-1].End
	}

	return ports.RecognitionResponse{
		Text:     r.Text,
		Language: r.Language,
		Duration: duration,
		Segments: segments,
	}
}
