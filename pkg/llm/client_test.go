package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chatCompletionReply = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1735689600,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "Summary: Login failure\nUrgency: High\nCategory: Login"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 42, "completion_tokens": 12, "total_tokens": 54}
}`

func TestClient_GenerateResponse(t *testing.T) {
	var body map[string]any
	var requestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		requestID = r.Header.Get(requestIDHeader)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionReply))
	}))
	defer server.Close()

	client, err := NewClient(&Config{
		Endpoint: server.URL + "/v1",
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	runID := uuid.New()
	ctx := WithTicketID(WithRunID(context.Background(), runID), 1)

	result, err := client.GenerateResponse(ctx, "Analyze this ticket", "", 0.3, 200)
	require.NoError(t, err)

	assert.Equal(t, "Summary: Login failure\nUrgency: High\nCategory: Login", result.Content)
	assert.Equal(t, 42, result.PromptTokens)
	assert.Equal(t, 12, result.CompletionTokens)
	assert.Equal(t, 54, result.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 200, body["max_tokens"])
	assert.InDelta(t, 0.3, body["temperature"], 0.0001)
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1, "empty system message must not be sent")
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])

	assert.Equal(t, runID.String(), requestID)
}

func TestClient_GenerateResponse_SystemMessage(t *testing.T) {
	var body map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionReply))
	}))
	defer server.Close()

	client, err := NewClient(&Config{Endpoint: server.URL, Model: "gpt-4o-mini"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), "prompt", "be brief", 0, 10)
	require.NoError(t, err)

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "be brief", messages[0].(map[string]any)["content"])
}

func TestClient_GenerateResponse_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	client, err := NewClient(&Config{Endpoint: server.URL, Model: "gpt-4o-mini", APIKey: "sk-wrong"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), "prompt", "", 0.3, 200)
	require.Error(t, err)

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, ErrorTypeAuth, llmErr.Type)
	assert.Equal(t, 401, llmErr.StatusCode)
	assert.Equal(t, "gpt-4o-mini", llmErr.Model)
	assert.False(t, llmErr.Retryable)
}

func TestClient_GenerateResponse_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[],"usage":{}}`))
	}))
	defer server.Close()

	client, err := NewClient(&Config{Endpoint: server.URL, Model: "gpt-4o-mini"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GenerateResponse(context.Background(), "prompt", "", 0.3, 200)
	assert.Error(t, err)
}

func TestNewClient_RequiresEndpointAndModel(t *testing.T) {
	_, err := NewClient(&Config{Model: "gpt-4o-mini"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(&Config{Endpoint: "http://localhost:8000/v1"}, zap.NewNop())
	assert.Error(t, err)
}

func TestContextAwareTransport_NoHeaderWithoutRunID(t *testing.T) {
	var headerPresent bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, headerPresent = r.Header[requestIDHeader]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: &contextAwareTransport{base: http.DefaultTransport}}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.False(t, headerPresent)
}
