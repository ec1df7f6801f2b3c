package security

import (
	"regexp"
	"strings"
)

var (
	jwtPattern     = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`)
	apiKeyPattern  = regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret|token|password)(["\s:=]+)["']?([a-zA-Z0-9_-]{16,})["']?`)
	walletPattern  = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
	explorerAPIKey = regexp.MustCompile(`(?i)(apikey=)[^&\s]+`)

	sensitiveFields = []string{
		"password", "secret", "token", "key", "auth",
		"pin", "private_key", "seed", "mnemonic", "credential",
	}
)

// MaskAddress shortens an address to its first 10 and last 6 characters.
// Strings too short to shorten are returned unchanged.
func MaskAddress(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:10] + "..." + addr[len(addr)-6:]
}

// MaskString masks tokens, keys and wallet addresses in free text
func MaskString(s string) string {
	s = jwtPattern.ReplaceAllString(s, "eyJ***REDACTED***")
	s = explorerAPIKey.ReplaceAllString(s, "${1}***REDACTED***")
	s = apiKeyPattern.ReplaceAllString(s, "${1}${2}***REDACTED***")
	s = walletPattern.ReplaceAllStringFunc(s, MaskAddress)
	return s
}

// MaskMap masks sensitive fields in a map
func MaskMap(data map[string]interface{}) map[string]interface{} {
	masked := make(map[string]interface{}, len(data))
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
		default:
			masked[k] = v
		}
	}
	return masked
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

// RedactHeaders flattens headers for logging with credentials removed
func RedactHeaders(headers map[string][]string) map[string]string {
	redacted := make(map[string]string, len(headers))
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization", "cookie", "set-cookie", "x-api-key":
			redacted[k] = "***REDACTED***"
		default:
			if len(v) > 0 {
				redacted[k] = v[0]
			}
		}
	}
	return redacted
}
