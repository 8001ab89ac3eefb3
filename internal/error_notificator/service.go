package error_notificator

import (
	"context"
	"errors"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

// Notify never fails the caller; a broken notifier must not break a request.
func (s *Service) Notify(ctx context.Context, stage string, err error, details string) error {
	if s == nil || s.infra == nil {
		return nil
	}
	_ = s.infra.Notify(ctx, stage, err, details)
	return nil
}

// Diagnose turns a collaborator error into a short user-safe hint.
// Raw provider messages are never returned.
func Diagnose(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the model service timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "the request was cancelled"
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		msg := strings.ToLower(err.Error())
		for _, code := range []int{401, 404, 429, 400, 500, 503} {
			if strings.Contains(msg, "status code: "+strconv.Itoa(code)) || strings.Contains(msg, "status "+strconv.Itoa(code)) {
				status = code
				break
			}
		}
	}

	switch status {
	case 401, 403:
		return "the model service rejected the credentials"
	case 404:
		return "the configured model was not found"
	case 429:
		return "the model service is rate limiting requests"
	case 400:
		return "the model service rejected the request"
	case 0:
		return "the model service could not be reached or returned an invalid response"
	default:
		if status >= 500 {
			return "the model service had an internal error"
		}
		return "the model service returned an unexpected status"
	}
}
