package security

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/postpilot/postpilot/pkg/core"
)

func TestValidateContent_Valid(t *testing.T) {
	assert.NoError(t, ValidateContent("a perfectly ordinary post"))
}

func TestValidateContent_Empty(t *testing.T) {
	assert.ErrorIs(t, ValidateContent(""), core.ErrEmptyContent)
	assert.ErrorIs(t, ValidateContent("   \n\t "), core.ErrEmptyContent)
}

func TestValidateContent_TooLong(t *testing.T) {
	assert.ErrorIs(t, ValidateContent(strings.Repeat("a", MaxContentLength+1)), core.ErrContentTooLong)
	assert.NoError(t, ValidateContent(strings.Repeat("a", MaxContentLength)))
}

func TestValidateContent_CountsRunesNotBytes(t *testing.T) {
	// 3000 multi-byte runes are within the limit even though the byte
	// length exceeds it.
	assert.NoError(t, ValidateContent(strings.Repeat("é", MaxContentLength)))
}

func TestSanitizeErrorMessage_Empty(t *testing.T) {
	assert.Equal(t, "", SanitizeErrorMessage(""))
}

func TestSanitizeErrorMessage_StripsControlCharacters(t *testing.T) {
	got := SanitizeErrorMessage("bad\x00value\x07 here\n")
	assert.Equal(t, "badvalue here\n", got)
}

func TestSanitizeErrorMessage_Truncates(t *testing.T) {
	got := SanitizeErrorMessage(strings.Repeat("x", MaxErrorMessageLength+100))
	assert.Len(t, got, MaxErrorMessageLength)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSanitizeErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// A multi-byte run straddling the limit must not be cut mid-rune;
	// invalid UTF-8 in last_error would be rejected by a TEXT column.
	msg := strings.Repeat("x", MaxErrorMessageLength-1) + strings.Repeat("é", 10)
	got := SanitizeErrorMessage(msg)

	assert.True(t, utf8.ValidString(got), "truncated message must stay valid UTF-8")
	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxErrorMessageLength)

	// All multi-byte content is also safe.
	got = SanitizeErrorMessage(strings.Repeat("é", MaxErrorMessageLength+50))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, MaxErrorMessageLength, utf8.RuneCountInString(got))
}

func TestClampBatchLimit(t *testing.T) {
	assert.Equal(t, MaxBatchLimit, ClampBatchLimit(0))
	assert.Equal(t, MaxBatchLimit, ClampBatchLimit(-5))
	assert.Equal(t, MaxBatchLimit, ClampBatchLimit(MaxBatchLimit+1))
	assert.Equal(t, 100, ClampBatchLimit(100))
}
