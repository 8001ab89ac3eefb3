// Package apperr carries a typed error kind across every adapter boundary so
// that the HTTP layer is the only place deciding status codes and payloads.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Vovarama1992/medassist/internal/languages"
)

type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindUnsupportedLanguage Kind = "unsupported_language"
	KindTooLarge            Kind = "payload_too_large"
	KindTranscription       Kind = "transcription_error"
	KindTranslation         Kind = "translation_error"
	KindSynthesis           Kind = "synthesis_error"
	KindTimeout             Kind = "timeout"
	KindInternal            Kind = "internal_error"
)

// Error is the application error. Message is safe to show to users,
// Cause is only for logs.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindUnsupportedLanguage:
		return http.StatusBadRequest
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ClientFault reports whether the error is the caller's fault (4xx).
func (e *Error) ClientFault() bool {
	return e.HTTPStatus() < http.StatusInternalServerError
}

func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// --- constructors ---

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func MissingField(field string) *Error {
	return New(KindValidation, fmt.Sprintf("missing required field: %s", field)).
		WithDetail("field", field)
}

func TooLarge(limit string) *Error {
	return New(KindTooLarge, fmt.Sprintf("upload exceeds the %s limit", limit)).
		WithDetail("limit", limit)
}

func UnsupportedLanguage(code string, supported []string) *Error {
	ule := &languages.UnsupportedLanguageError{Code: code, Supported: supported}
	return &Error{
		Kind:    KindUnsupportedLanguage,
		Message: ule.Error(),
		Details: map[string]any{"code": code, "supported": supported},
		Cause:   ule,
	}
}

func Transcription(message string, cause error) *Error {
	return Wrap(KindTranscription, message, cause)
}

func Translation(message string, cause error) *Error {
	return Wrap(KindTranslation, message, cause)
}

func Synthesis(message string, cause error) *Error {
	return Wrap(KindSynthesis, message, cause)
}

// Timeout is the request deadline running out while a collaborator was busy.
func Timeout(cause error) *Error {
	return Wrap(KindTimeout, "the request took too long to process", cause)
}

func Internal(cause error) *Error {
	return Wrap(KindInternal, "an unexpected error occurred", cause)
}

// --- inspection ---

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// From classifies any error. Registry errors become UnsupportedLanguage,
// anything unknown becomes Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	var ule *languages.UnsupportedLanguageError
	if errors.As(err, &ule) {
		return UnsupportedLanguage(ule.Code, ule.Supported)
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
