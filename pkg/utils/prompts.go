package utils

import (
	"os"
	"strings"
)

// LoadPromptWithFallback reads prompt instructions from path, returning the
// fallback when the file is missing, unreadable, or blank. Content is
// whitespace-trimmed so trailing newlines in prompt files do not leak into
// the assembled prompt.
func LoadPromptWithFallback(path, fallback string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return fallback
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return fallback
	}

	return trimmed
}
