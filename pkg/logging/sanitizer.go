package logging

import (
	"regexp"
	"unicode/utf8"
)

const (
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match JWT tokens (three base64 segments separated by dots)
	jwtPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`)

	// Pattern to match bearer tokens that are not JWTs (OpenAI keys are sent this way)
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]{16,}`)

	// Pattern to match key=value API keys
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|x-api-key|key)[=:]\s*[A-Za-z0-9-_]{20,}`)

	// Pattern to match OpenAI and Anthropic secret keys (sk-..., sk-ant-...)
	secretKeyPattern = regexp.MustCompile(`sk-[A-Za-z0-9-_]{16,}`)

	// Pattern to match AWS access key ids
	awsAccessKeyPattern = regexp.MustCompile(`\b(AKIA|ASIA)[0-9A-Z]{16}\b`)

	// Pattern to match presigned URL signature and credential parameters
	awsSignaturePattern = regexp.MustCompile(`(?i)(X-Amz-Signature|X-Amz-Credential|X-Amz-Security-Token)=[^&\s"]+`)

	// Pattern to match credentials embedded in endpoint URLs (user:pass@host format)
	userInfoPattern = regexp.MustCompile(`://[^:/\s]+:[^@/\s]+@`)
)

// SanitizeEndpoint removes credentials embedded in an endpoint URL.
// Use this before logging any configured endpoint.
func SanitizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	return userInfoPattern.ReplaceAllString(endpoint, "://"+RedactedText+"@")
}

// SanitizeError sanitizes error messages that might contain sensitive data.
// Use this before logging any error from the completion service or object storage.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText redacts secrets from arbitrary text.
func SanitizeText(s string) string {
	sanitized := jwtPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = secretKeyPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = awsAccessKeyPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = awsSignaturePattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = userInfoPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
	return sanitized
}

// TruncateString truncates a string to at most maxLen bytes and adds ellipsis
// if needed. The cut backs off to a rune boundary so the result stays valid UTF-8.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
