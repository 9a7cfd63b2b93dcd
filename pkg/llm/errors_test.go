package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

func TestError_Error_WithStatusCode(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeEndpoint,
		Message:    "server error",
		StatusCode: 503,
	}

	result := err.Error()
	if !strings.Contains(result, "HTTP 503") {
		t.Errorf("expected error message to contain 'HTTP 503', got: %s", result)
	}
	if !strings.Contains(result, "server error") {
		t.Errorf("expected error message to contain 'server error', got: %s", result)
	}
}

func TestError_Error_WithEndpoint(t *testing.T) {
	err := &Error{
		Type:     ErrorTypeEndpoint,
		Message:  "connection failed",
		Model:    "gpt-4o-mini",
		Endpoint: "https://api.openai.com/v1",
	}

	result := err.Error()
	if !strings.Contains(result, "model=gpt-4o-mini") {
		t.Errorf("expected error message to contain 'model=gpt-4o-mini', got: %s", result)
	}
	// Only the host is reported
	if !strings.Contains(result, "endpoint=api.openai.com") {
		t.Errorf("expected error message to contain 'endpoint=api.openai.com', got: %s", result)
	}
	if strings.Contains(result, "/v1") {
		t.Errorf("endpoint should be reduced to host, got: %s", result)
	}
}

func TestError_Error_WithCause(t *testing.T) {
	cause := errors.New("underlying connection error")
	err := NewError(ErrorTypeEndpoint, "connection failed", true, cause)

	result := err.Error()
	if !strings.HasSuffix(result, ": underlying connection error") {
		t.Errorf("expected cause at end of message, got: %s", result)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewError(ErrorTypeUnknown, "llm error", false, cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("enrich ticket 1: %w", err)
	var llmErr *Error
	if !errors.As(wrapped, &llmErr) {
		t.Fatal("expected errors.As to find *Error through wrapping")
	}
	if llmErr != err {
		t.Error("expected the same *Error instance")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantStatus    int
		wantRetryable bool
	}{
		{"unauthorized", errors.New("HTTP 401 Unauthorized"), ErrorTypeAuth, 401, false},
		{"invalid key", errors.New("invalid api key"), ErrorTypeAuth, 0, false},
		{"model missing", errors.New("The model `gpt-9` does not exist"), ErrorTypeModel, 0, false},
		{"not found", errors.New("HTTP 404 Not Found"), ErrorTypeEndpoint, 404, false},
		{"rate limited", errors.New("HTTP 429 Too Many Requests"), ErrorTypeEndpoint, 429, true},
		{"server error", errors.New("HTTP 503 Service Unavailable"), ErrorTypeEndpoint, 503, true},
		{"overloaded", errors.New("overloaded_error: Overloaded"), ErrorTypeEndpoint, 0, true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connect: connection refused"), ErrorTypeEndpoint, 0, true},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ErrorTypeEndpoint, 0, true},
		{"canceled", fmt.Errorf("post: %w", context.Canceled), ErrorTypeCanceled, 0, false},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, 0, false},
		{"openai api error", &openai.APIError{HTTPStatusCode: 500, Message: "boom"}, ErrorTypeEndpoint, 500, true},
		{"anthropic rate limit", &anthropic.APIError{Type: anthropic.ErrTypeRateLimit, Message: "too many requests"}, ErrorTypeEndpoint, 429, true},
		{"anthropic model not found", &anthropic.APIError{Type: anthropic.ErrTypeNotFound, Message: "model: claude-nope"}, ErrorTypeModel, 404, false},
		{"anthropic authentication", &anthropic.APIError{Type: anthropic.ErrTypeAuthentication, Message: "bad key"}, ErrorTypeAuth, 401, false},
		{"anthropic permission", &anthropic.APIError{Type: anthropic.ErrTypePermission, Message: "denied"}, ErrorTypeAuth, 403, false},
		{"anthropic overloaded", &anthropic.APIError{Type: anthropic.ErrTypeOverloaded, Message: "busy"}, ErrorTypeEndpoint, 529, true},
		{"anthropic api error", &anthropic.APIError{Type: anthropic.ErrTypeApi, Message: "internal"}, ErrorTypeEndpoint, 500, true},
		{"anthropic wrapped with status", fmt.Errorf("error, status code: 429, message: %w", &anthropic.APIError{Type: anthropic.ErrTypeRateLimit, Message: "slow down"}), ErrorTypeEndpoint, 429, true},
		{"anthropic invalid request", &anthropic.APIError{Type: anthropic.ErrTypeInvalidRequest, Message: "bad input"}, ErrorTypeUnknown, 0, false},
		{"anthropic request error", &anthropic.RequestError{StatusCode: 503, Err: errors.New("unexpected body")}, ErrorTypeEndpoint, 503, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.err)
			if result.Type != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, result.Type)
			}
			if result.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, result.StatusCode)
			}
			if result.Retryable != tt.wantRetryable {
				t.Errorf("expected retryable=%v, got %v", tt.wantRetryable, result.Retryable)
			}
			if !errors.Is(result, tt.err) {
				t.Error("expected classified error to wrap the original")
			}
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if ClassifyError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestClassifyError_PreservesExistingError(t *testing.T) {
	original := NewError(ErrorTypeAuth, "authentication failed", false, nil)

	result := ClassifyError(fmt.Errorf("wrapped: %w", original))
	if result != original {
		t.Error("expected ClassifyError to return the same *Error instance")
	}
}

func TestExtractStatusCode_IgnoresPorts(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.1:443: i/o error")
	if code := extractStatusCode(err); code != 0 {
		t.Errorf("expected no status code, got %d", code)
	}

	err = errors.New("request id 15030 failed with 502")
	if code := extractStatusCode(err); code != 502 {
		t.Errorf("expected 502, got %d", code)
	}
}

func TestIsRetryableAndGetErrorType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(ErrorTypeEndpoint, "server error", true, nil))
	if !IsRetryable(err) {
		t.Error("expected retryable")
	}
	if GetErrorType(err) != ErrorTypeEndpoint {
		t.Errorf("expected endpoint type, got %s", GetErrorType(err))
	}

	plain := errors.New("plain")
	if IsRetryable(plain) {
		t.Error("plain errors are not retryable")
	}
	if GetErrorType(plain) != ErrorTypeUnknown {
		t.Errorf("expected unknown type, got %s", GetErrorType(plain))
	}
}
