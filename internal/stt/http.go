package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"voicetasks/internal/model"
)

// HTTPProvider posts clips to a whisper-compatible endpoint at an exact URL.
// Used for self-hosted servers that do not follow the OpenAI path layout.
type HTTPProvider struct {
	apiKey     string
	url        string
	authHeader string
	model      string
	client     *http.Client
}

// NewHTTPProvider creates a new HTTP STT provider
func NewHTTPProvider(apiKey, url, authHeader, modelName string, timeout time.Duration) *HTTPProvider {
	if authHeader == "" {
		authHeader = "Authorization"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPProvider{
		apiKey:     apiKey,
		url:        url,
		authHeader: authHeader,
		model:      modelName,
		client:     &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (p *HTTPProvider) Name() string {
	return "http"
}

type transcriptionResponse struct {
	Text  *string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transcribe sends the clip to the configured endpoint and returns the transcript
func (p *HTTPProvider) Transcribe(ctx context.Context, clip *model.AudioClip, language model.Language) (*model.Transcript, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("STT credential is not set: %w", model.ErrAuthenticationMissing)
	}
	startTime := time.Now()

	body, contentType, err := p.buildBody(clip, language)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if strings.EqualFold(p.authHeader, "Authorization") {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	} else {
		req.Header.Set(p.authHeader, p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", &model.ServiceError{Message: err.Error()})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Log raw response for debugging (first 500 chars)
	responsePreview := string(respBody)
	if len(responsePreview) > 500 {
		responsePreview = responsePreview[:500] + "..."
	}
	log.Printf("[STT HTTP] Response preview: %s", responsePreview)

	var sttResp transcriptionResponse
	parseErr := json.Unmarshal(respBody, &sttResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		if parseErr == nil && sttResp.Error != nil && sttResp.Error.Message != "" {
			msg = sttResp.Error.Message
		}
		log.Printf("[STT HTTP] API error: Status %d, Body: %s", resp.StatusCode, responsePreview)
		return nil, &model.ServiceError{StatusCode: resp.StatusCode, Message: msg}
	}

	if parseErr != nil || sttResp.Text == nil {
		log.Printf("[STT HTTP] No text field in response")
		return nil, model.ErrEmptyResponse
	}

	text := strings.TrimSpace(*sttResp.Text)
	if text == "" {
		log.Printf("[STT HTTP] Empty transcript returned")
		return nil, model.ErrEmptyResponse
	}

	log.Printf("[STT HTTP] Transcription successful: length=%d, duration=%v", len(text), time.Since(startTime))

	return &model.Transcript{Text: text, Language: language}, nil
}

func (p *HTTPProvider) buildBody(clip *model.AudioClip, language model.Language) (io.Reader, string, error) {
	audio, err := os.ReadFile(clip.Locator)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio clip: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	mimeType := clip.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, uploadName(clip)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}

	if err := writer.WriteField("model", p.model); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("language", string(language)); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}
