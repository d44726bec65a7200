package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

// YouTube video IDs are always 11 characters from this alphabet. The pattern
// accepts watch?v=, youtu.be/, shorts/ and embed/ URL forms; anything after
// the first 11 characters is ignored.
var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID parses a YouTube URL and returns the 11-character video ID.
// Returns ErrInvalidURL when no ID can be found.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	match := videoIDPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	return match[1], nil
}
