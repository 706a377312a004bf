package models

import (
	"strings"
	"time"
	"unicode"
)

// SanitizeFilename makes a topic safe to use as a file name component.
// Path separators, control characters and characters reserved on common
// filesystems become '-'; unicode letters are kept so CJK topics stay readable.
func SanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ".-_")
	if out == "" {
		return "untitled"
	}
	return out
}

// Filename returns the artifact file name for a topic generated on date.
func Filename(date time.Time, topic string) string {
	return date.Format("20060102") + "_" + SanitizeFilename(topic) + ".md"
}
