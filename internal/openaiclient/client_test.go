package openaiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicetasks/internal/model"
)

func TestToServiceErrorFromAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := New("sk-test", srv.URL+"/v1", 0)
	_, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model:    openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	se, ok := model.AsServiceError(ToServiceError(err))
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "Incorrect API key provided", se.Message)
}

func TestToServiceErrorTransport(t *testing.T) {
	err := ToServiceError(errors.New("dial tcp: connection refused"))
	se, ok := model.AsServiceError(err)
	require.True(t, ok)
	assert.Zero(t, se.StatusCode)
	assert.Nil(t, ToServiceError(nil))
}
