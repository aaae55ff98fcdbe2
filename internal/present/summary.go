package present

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	summaryMaxLen = 80
	previewMaxLen = 40
)

// toolInputSummary extracts a short human-readable description from the tool
// input for display in the approval message.
func toolInputSummary(toolName string, input map[string]any) string {
	if input == nil {
		return ""
	}

	switch toolName {
	case "Bash":
		return truncate(str(input, "command"), summaryMaxLen)

	case "Read", "Write", "Glob":
		if p := str(input, "file_path"); p != "" {
			return p
		}

		return str(input, "pattern")

	case "Edit", "MultiEdit":
		s := str(input, "file_path")
		if old := str(input, "old_string"); old != "" {
			preview := strings.ReplaceAll(truncate(old, previewMaxLen), "\n", "↵")
			s += fmt.Sprintf(" `%s`", preview)
		}

		return s

	case "WebFetch":
		return str(input, "url")

	default:
		// Fall back to the first string-valued field.
		for _, v := range input {
			if s, ok := v.(string); ok && s != "" {
				return truncate(s, summaryMaxLen)
			}
		}

		return ""
	}
}

func str(input map[string]any, key string) string {
	s, _ := input[key].(string)

	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	// Back off to a rune boundary so the cut never splits a multibyte
	// character.
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + "..."
}
