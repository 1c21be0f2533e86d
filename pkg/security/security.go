package security

import (
	"strings"
	"unicode/utf8"

	"github.com/postpilot/postpilot/pkg/core"
)

// Security limits and configuration
const (
	// MaxContentLength is the platform's cap on post commentary, in runes.
	MaxContentLength = 3000

	// MaxErrorMessageLength is the maximum length for stored error messages
	MaxErrorMessageLength = 4096

	// MaxBatchLimit is the hard cap on rows processed in one lane tick
	MaxBatchLimit = 10000
)

// ValidateContent checks post text against platform constraints before a
// submit attempt is made.
func ValidateContent(text string) error {
	if strings.TrimSpace(text) == "" {
		return core.ErrEmptyContent
	}
	if utf8.RuneCountInString(text) > MaxContentLength {
		return core.ErrContentTooLong
	}
	return nil
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	// Remove any null bytes or control characters (except newlines)
	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	// Truncate on runes so stored text stays valid UTF-8.
	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}
	return result
}

// ClampBatchLimit ensures a batch limit is positive and within the hard cap.
func ClampBatchLimit(n int) int {
	if n <= 0 {
		return MaxBatchLimit
	}
	if n > MaxBatchLimit {
		return MaxBatchLimit
	}
	return n
}
