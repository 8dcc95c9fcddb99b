package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID returns a new random UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// ParseDate parses a YYYY-MM-DD date string
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FormatDate formats a time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// SanitizeFilename lowercases a name and replaces anything outside
// [a-z0-9-] with hyphens, collapsing runs. Used for deterministic
// document filenames.
func SanitizeFilename(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
