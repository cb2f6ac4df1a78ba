package logging

import (
	"fmt"
	"net/url"
	"strings"
)

// Redactor scrubs credentials from log fields before they are written.
//
// Spec files and configuration carry secrets that must never reach log
// output: git access tokens for private spec repositories, database
// passwords, and object-store keys for ledger archives. Download URLs can
// also embed basic-auth userinfo. Redaction is keyed on the field name for
// secrets and on URL structure for embedded userinfo.
type Redactor struct {
	// sensitiveKeys holds lowercase substrings that mark a field as secret
	sensitiveKeys []string
}

// NewRedactor creates a redactor with the built-in sensitive key list.
func NewRedactor() *Redactor {
	return &Redactor{
		sensitiveKeys: []string{
			"password",
			"passwd",
			"secret",
			"token",
			"api_key",
			"apikey",
			"access_key",
			"secret_key",
			"credential",
			"auth",
		},
	}
}

// RedactArgs redacts sensitive values in key-value argument pairs.
// Arguments follow the slog convention of alternating keys and values.
func (r *Redactor) RedactArgs(args ...any) []any {
	redacted := make([]any, len(args))

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			// Odd number of args, just copy the last one
			redacted[i] = args[i]
			break
		}

		key, keyOk := args[i].(string)
		value := args[i+1]

		redacted[i] = args[i]

		if keyOk && r.isSensitiveKey(key) {
			// Redact the value based on the key name
			redacted[i+1] = r.redactValue(fmt.Sprintf("%v", value))
		} else if keyOk && isURLKey(key) {
			// Scrub embedded userinfo from URL values
			if s, ok := value.(string); ok {
				redacted[i+1] = RedactURL(s)
			} else {
				redacted[i+1] = value
			}
		} else {
			redacted[i+1] = value
		}
	}

	return redacted
}

// isSensitiveKey checks if a key name indicates sensitive data.
func (r *Redactor) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range r.sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// redactValue redacts a sensitive value, keeping the first 4 characters
// so operators can still correlate which credential was in play.
func (r *Redactor) redactValue(value string) string {
	if len(value) <= 4 {
		return "***"
	}
	return value[:4] + "***"
}

// isURLKey reports whether a field name carries a URL value.
func isURLKey(key string) bool {
	lowerKey := strings.ToLower(key)
	return lowerKey == "url" || strings.HasSuffix(lowerKey, "_url") ||
		lowerKey == "remote" || lowerKey == "repository"
}

// RedactURL masks the password in a URL's userinfo section. Values that do
// not parse as URLs or carry no userinfo pass through unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}

	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
