// Package security masks personally-identifying and secret values before
// they reach a log line: child/guardian emails and phone numbers, bearer
// tokens, and anything shaped like an API key or password.
package security

import (
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?[0-9]{10,15}`)
	jwtPattern    = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`)
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret|token|password|auth)["\s:=]+["']?([a-zA-Z0-9_-]{16,})["']?`)

	sensitiveFields = []string{
		"password", "passcode", "secret", "token", "key", "auth",
		"pin", "api_key", "apikey", "access_token", "bearer", "credential",
	}
)

// MaskString masks sensitive patterns found in a string.
func MaskString(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, maskEmail)
	s = phonePattern.ReplaceAllString(s, "***-***-****")
	s = jwtPattern.ReplaceAllString(s, "eyJ***REDACTED***")
	s = apiKeyPattern.ReplaceAllString(s, "$1: ***REDACTED***")
	return s
}

// MaskMap masks sensitive fields in a map, recursing into nested maps and
// slices.
func MaskMap(data map[string]interface{}) map[string]interface{} {
	masked := make(map[string]interface{})
	for k, v := range data {
		if isSensitiveField(k) {
			masked[k] = "***REDACTED***"
			continue
		}

		switch val := v.(type) {
		case string:
			masked[k] = MaskString(val)
		case map[string]interface{}:
			masked[k] = MaskMap(val)
		case []interface{}:
			masked[k] = maskSlice(val)
		default:
			masked[k] = v
		}
	}
	return masked
}

func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***.***"
	}

	local := parts[0]
	domain := parts[1]

	maskedLocal := maskPartial(local, 2)
	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		maskedDomain := maskPartial(domainParts[0], 1) + "." + domainParts[len(domainParts)-1]
		return maskedLocal + "@" + maskedDomain
	}

	return maskedLocal + "@" + maskPartial(domain, 2)
}

// MaskPhoneNumber masks a phone number, keeping the last 4 digits.
func MaskPhoneNumber(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// MaskAPIKey masks an API key, keeping only the first 4 characters.
func MaskAPIKey(key string) string {
	if len(key) < 4 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

func maskPartial(s string, showChars int) string {
	if len(s) <= showChars {
		return strings.Repeat("*", len(s))
	}
	return s[:showChars] + strings.Repeat("*", len(s)-showChars)
}

func isSensitiveField(field string) bool {
	lower := strings.ToLower(field)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

func maskSlice(slice []interface{}) []interface{} {
	masked := make([]interface{}, len(slice))
	for i, v := range slice {
		switch val := v.(type) {
		case string:
			masked[i] = MaskString(val)
		case map[string]interface{}:
			masked[i] = MaskMap(val)
		default:
			masked[i] = v
		}
	}
	return masked
}

// SanitizeForLog prepares a value for safe logging.
func SanitizeForLog(data interface{}) interface{} {
	switch v := data.(type) {
	case string:
		return MaskString(v)
	case map[string]interface{}:
		return MaskMap(v)
	case []interface{}:
		return maskSlice(v)
	default:
		return data
	}
}

// RedactHeaders replaces sensitive header values (Authorization, cookies)
// with a redaction marker, keeping the rest for diagnostic logging.
func RedactHeaders(headers map[string][]string) map[string]string {
	redacted := make(map[string]string)
	sensitiveHeaders := []string{"authorization", "x-api-key", "cookie", "set-cookie"}

	for k, v := range headers {
		lower := strings.ToLower(k)
		isSensitive := false
		for _, sensitive := range sensitiveHeaders {
			if strings.Contains(lower, sensitive) {
				isSensitive = true
				break
			}
		}
		if isSensitive {
			redacted[k] = "***REDACTED***"
			continue
		}
		if len(v) > 0 {
			redacted[k] = v[0]
		}
	}
	return redacted
}
