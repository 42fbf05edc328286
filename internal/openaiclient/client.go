// Package openaiclient builds go-openai clients from injected configuration
// and maps their failures onto the pipeline's error kinds.
package openaiclient

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"voicetasks/internal/model"
)

// New creates an OpenAI client for apiKey. An empty baseURL keeps the public endpoint.
func New(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(cfg)
}

// ToServiceError converts a go-openai error into *model.ServiceError.
func ToServiceError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &model.ServiceError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.HTTPStatus
		if len(reqErr.Body) > 0 {
			msg = truncate(string(reqErr.Body), 500)
		} else if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &model.ServiceError{StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	return &model.ServiceError{Message: err.Error()}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
