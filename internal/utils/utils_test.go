package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Blinds Ltd.", "acme-blinds-ltd"},
		{"  Smith & Sons  ", "smith-sons"},
		{"already-clean", "already-clean"},
		{"UPPER CASE", "upper-case"},
		{"trailing...", "trailing"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestParseAndFormatDate(t *testing.T) {
	parsed, err := ParseDate("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), parsed)
	assert.Equal(t, "2026-03-14", FormatDate(parsed))

	_, err = ParseDate("14/03/2026")
	assert.Error(t, err)
}

func TestGenerateUUID(t *testing.T) {
	a := GenerateUUID()
	b := GenerateUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
