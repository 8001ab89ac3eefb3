package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-playground/validator/v10"

	"github.com/Vovarama1992/medassist/internal/apperr"
)

// generic, user-facing error line per kind; details carry the specifics
var genericErrors = map[apperr.Kind]string{
	apperr.KindValidation:          "Invalid request",
	apperr.KindUnsupportedLanguage: "Unsupported language",
	apperr.KindTooLarge:            "File too large",
	apperr.KindTranscription:       "Speech recognition failed",
	apperr.KindTranslation:         "Translation failed",
	apperr.KindSynthesis:           "Speech synthesis failed",
	apperr.KindTimeout:             "Request timed out",
	apperr.KindInternal:            "Internal server error",
}

type errorResponse struct {
	Error   string         `json:"error"`
	Kind    apperr.Kind    `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

// envelopeError is the /stt and /tts failure shape.
type envelopeError struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Details string      `json:"details"`
	Kind    apperr.Kind `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps err to an apperr, turning work cut short by the request
// deadline into a timeout whatever stage it failed in.
func classify(r *http.Request, err error) *apperr.Error {
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) && errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(err)
	}
	return apperr.From(err)
}

func (h *Handler) logFailure(endpoint string, e *apperr.Error) {
	level := "error"
	if e.ClientFault() {
		level = "warn"
	}
	h.log.Log(logger.LogEntry{
		Level:   level,
		Message: endpoint + ": " + e.Message,
		Service: serviceName,
		Error:   e,
	})
}

// fail answers with {error, kind[, details]}; error is the sanitized message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	e := classify(r, err)
	h.logFailure(endpoint, e)
	h.stage(r, endpoint, "respond", "status", e.HTTPStatus(), "kind", e.Kind)

	writeJSON(w, e.HTTPStatus(), errorResponse{
		Error:   e.Message,
		Kind:    e.Kind,
		Details: e.Details,
	})
}

// failEnvelope answers with {success:false, error, details}: a generic error
// line and the sanitized message as details.
func (h *Handler) failEnvelope(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	e := classify(r, err)
	h.logFailure(endpoint, e)
	h.stage(r, endpoint, "respond", "status", e.HTTPStatus(), "kind", e.Kind)

	writeJSON(w, e.HTTPStatus(), envelopeError{
		Success: false,
		Error:   genericErrors[e.Kind],
		Details: e.Message,
		Kind:    e.Kind,
	})
}

// checkStruct runs validator tags and turns the first failure into a
// validation error.
func (h *Handler) checkStruct(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("invalid request")
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return apperr.MissingField(fe.Field())
	}
	return apperr.Validation("invalid value for %s", fe.Field()).WithDetail("field", fe.Field())
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
