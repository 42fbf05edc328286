package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"voicetasks/internal/model"
	"voicetasks/internal/openaiclient"
)

// extractionTemperature keeps extraction literal and repeatable.
const extractionTemperature = 0.3

// Extractor turns transcripts into ordered task lists via chat completion
type Extractor struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewExtractor creates a task extractor for the given credential and model
func NewExtractor(apiKey, baseURL, modelName string, timeout time.Duration) *Extractor {
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &Extractor{
		apiKey: apiKey,
		model:  modelName,
		client: openaiclient.New(apiKey, baseURL, timeout),
	}
}

// Extract sends the transcript to the model and parses the returned tasks
func (e *Extractor) Extract(ctx context.Context, transcript *model.Transcript) ([]model.Task, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set: %w", model.ErrAuthenticationMissing)
	}

	systemPrompt := BuildTaskPrompt(transcript.Language)

	log.Printf("=== Task Extraction Request ===")
	log.Printf("[Extractor] Language: %s, transcript length: %d characters", transcript.Language, len(transcript.Text))

	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: transcript.Text,
			},
		},
		Temperature: extractionTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("[Extractor] OpenAI API error: %v", err)
		return nil, fmt.Errorf("task extraction failed: %w", openaiclient.ToServiceError(err))
	}

	log.Printf("[Extractor] Usage - Prompt tokens: %d, Completion tokens: %d, Total tokens: %d",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		log.Printf("[Extractor] ERROR: OpenAI returned no choices")
		return nil, fmt.Errorf("%w: no choices in response", model.ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	log.Printf("[Extractor] Response preview: %s", truncateString(content, 500))

	tasks, err := ParseTasks(content)
	if err != nil {
		log.Printf("[Extractor] ERROR: %v", err)
		return nil, err
	}

	log.Printf("[Extractor] Extracted %d tasks", len(tasks))
	return tasks, nil
}

type extractionPayload struct {
	Tasks json.RawMessage `json:"tasks"`
}

type rawTask struct {
	Title    json.RawMessage `json:"title"`
	DueDate  json.RawMessage `json:"dueDate"`
	Priority json.RawMessage `json:"priority"`
}

// ParseTasks parses `{"tasks":[...]}` keeping element order.
// dueDate and priority are passed through without validation.
func ParseTasks(content string) ([]model.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", model.ErrMalformedResponse)
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		// Some models still wrap JSON in a code fence
		extracted := extractJSONFromMarkdown(content)
		if err := json.Unmarshal([]byte(extracted), &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
		}
	}

	if len(payload.Tasks) == 0 || string(payload.Tasks) == "null" {
		return nil, fmt.Errorf("%w: missing tasks field", model.ErrMalformedResponse)
	}

	var raws []rawTask
	if err := json.Unmarshal(payload.Tasks, &raws); err != nil {
		return nil, fmt.Errorf("%w: tasks is not an array of objects: %v", model.ErrMalformedResponse, err)
	}

	tasks := make([]model.Task, 0, len(raws))
	for i, raw := range raws {
		var title string
		if err := json.Unmarshal(raw.Title, &title); err != nil || strings.TrimSpace(title) == "" {
			return nil, fmt.Errorf("%w: task %d has no title", model.ErrMalformedResponse, i)
		}
		tasks = append(tasks, model.Task{
			Title:    strings.TrimSpace(title),
			DueDate:  passThrough(raw.DueDate),
			Priority: model.Priority(passThrough(raw.Priority)),
		})
	}

	return tasks, nil
}

// passThrough returns a JSON string's value, "" for null/absent, or the raw text otherwise.
func passThrough(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// extractJSONFromMarkdown extracts JSON from markdown code blocks
func extractJSONFromMarkdown(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}

// truncateString truncates string to max length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
