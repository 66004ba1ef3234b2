package redact

import (
	"net/http"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

var tokenQueryPattern = regexp.MustCompile(`([?&](?:access_token|token|api_key)=)[^&\s]+`)

var sensitiveKeyWords = []string{"token", "authorization", "secret", "password", "api_key", "apikey", "credential"}

var sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie", "X-Api-Key"}

// String scrubs the endpoint token and token-bearing query parameters
// from text. Upstream services routinely echo the request URL back
// inside their error bodies.
func String(value string, token string) string {
	if value == "" {
		return value
	}

	scrubbed := tokenQueryPattern.ReplaceAllString(value, `${1}`+placeholder)
	if token == "" {
		return scrubbed
	}

	return strings.ReplaceAll(scrubbed, token, placeholder)
}

// Tree walks a decoded payload and masks values under sensitive keys
// plus token occurrences inside strings. The input tree is not
// modified; a masked copy is returned.
func Tree(value any, token string) any {
	switch typed := value.(type) {
	case map[string]any:
		clean := make(map[string]any, len(typed))
		for key, nested := range typed {
			if isSensitiveKey(key) {
				clean[key] = placeholder
				continue
			}
			clean[key] = Tree(nested, token)
		}
		return clean
	case []any:
		clean := make([]any, len(typed))
		for index := range typed {
			clean[index] = Tree(typed[index], token)
		}
		return clean
	case string:
		return String(typed, token)
	default:
		return value
	}
}

// Headers returns a copy of h with credential-bearing headers masked.
func Headers(h http.Header) http.Header {
	clean := make(http.Header, len(h))
	for key, values := range h {
		if isSensitiveHeader(key) {
			clean[key] = []string{placeholder}
			continue
		}
		clean[key] = append([]string(nil), values...)
	}

	return clean
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, keyword := range sensitiveKeyWords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return false
}

func isSensitiveHeader(key string) bool {
	canonical := http.CanonicalHeaderKey(key)
	for _, header := range sensitiveHeaders {
		if canonical == header {
			return true
		}
	}

	return false
}
