package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

// ErrorType indicates which configuration field caused the error.
type ErrorType string

const (
	ErrorTypeNone     ErrorType = ""
	ErrorTypeEndpoint ErrorType = "endpoint"
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeModel    ErrorType = "model"
	ErrorTypeCanceled ErrorType = "canceled"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents a structured LLM error with classification.
// Retryable is informational; the pipeline never retries.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation could succeed if repeated
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Model      string    // Model name if known
	Endpoint   string    // Endpoint URL if known
}

// Error implements the error interface. The endpoint is reduced to its host.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}
	if host := endpointHost(e.Endpoint); host != "" {
		parts = append(parts, fmt.Sprintf("endpoint=%s", host))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured LLM error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// statusCodePattern lists the statuses providers actually return, so ports and
// other three-digit numbers in dial errors are not mistaken for them.
var statusCodePattern = regexp.MustCompile(`\b(400|401|403|404|408|409|413|422|429|500|502|503|504|529)\b`)

// ClassifyError categorizes an error and returns a structured Error.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Check if already an *Error
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	statusCode := extractStatusCode(err)
	lower := strings.ToLower(err.Error())

	classified := func(errType ErrorType, message string, retryable bool) *Error {
		e := NewError(errType, message, retryable, err)
		e.StatusCode = statusCode
		return e
	}

	// Cancellation comes from the caller and is never worth repeating.
	if errors.Is(err, context.Canceled) || strings.Contains(lower, "context canceled") {
		return classified(ErrorTypeCanceled, "request canceled", false)
	}

	// Anthropic reports a typed error body; trust it over the message text.
	var anthropicErr *anthropic.APIError
	if errors.As(err, &anthropicErr) {
		if errType, message, retryable, ok := classifyAnthropicType(anthropicErr.Type); ok {
			if statusCode == 0 {
				statusCode = anthropicStatusCodes[anthropicErr.Type]
			}
			return classified(errType, message, retryable)
		}
	}

	// Authentication errors (not retryable)
	if statusCode == 401 || statusCode == 403 || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "invalid x-api-key") {
		return classified(ErrorTypeAuth, "authentication failed", false)
	}

	// Model not found (not retryable without config change)
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")) {
		return classified(ErrorTypeModel, "model not found", false)
	}

	// Endpoint not found (not retryable without config change)
	if statusCode == 404 {
		return classified(ErrorTypeEndpoint, "endpoint not found", false)
	}

	// Connection errors (may be retryable)
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		return classified(ErrorTypeEndpoint, "connection failed", true)
	}

	// Timeout and deadline exceeded (retryable)
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") {
		return classified(ErrorTypeEndpoint, "request timeout", true)
	}

	// Rate limiting (retryable after backoff)
	if statusCode == 429 || strings.Contains(lower, "rate limit") {
		return classified(ErrorTypeEndpoint, "rate limited", true)
	}

	// Provider overload and 5xx server errors (retryable)
	if statusCode >= 500 || strings.Contains(lower, "overloaded") {
		return classified(ErrorTypeEndpoint, "server error", true)
	}

	return classified(ErrorTypeUnknown, "llm error", false)
}

// anthropicStatusCodes is the HTTP status documented for each Anthropic error
// type, used when the error arrives without one.
var anthropicStatusCodes = map[anthropic.ErrType]int{
	anthropic.ErrTypeInvalidRequest: 400,
	anthropic.ErrTypeAuthentication: 401,
	anthropic.ErrTypePermission:     403,
	anthropic.ErrTypeNotFound:       404,
	anthropic.ErrTypeTooLarge:       413,
	anthropic.ErrTypeRateLimit:      429,
	anthropic.ErrTypeApi:            500,
	anthropic.ErrTypeOverloaded:     529,
}

// classifyAnthropicType maps an Anthropic error type onto the taxonomy.
// Types without a clear mapping return ok=false.
func classifyAnthropicType(t anthropic.ErrType) (errType ErrorType, message string, retryable, ok bool) {
	switch t {
	case anthropic.ErrTypeAuthentication, anthropic.ErrTypePermission:
		return ErrorTypeAuth, "authentication failed", false, true
	case anthropic.ErrTypeNotFound:
		return ErrorTypeModel, "model not found", false, true
	case anthropic.ErrTypeRateLimit:
		return ErrorTypeEndpoint, "rate limited", true, true
	case anthropic.ErrTypeOverloaded, anthropic.ErrTypeApi:
		return ErrorTypeEndpoint, "server error", true, true
	}
	return "", "", false, false
}

// extractStatusCode prefers the status reported by the provider SDKs and falls back
// to the first known status number in the message.
func extractStatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return reqErr.HTTPStatusCode
	}
	var anthropicReqErr *anthropic.RequestError
	if errors.As(err, &anthropicReqErr) && anthropicReqErr.StatusCode > 0 {
		return anthropicReqErr.StatusCode
	}

	m := statusCodePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	code, _ := strconv.Atoi(m[1])
	return code
}

func endpointHost(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}
