package transcript

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors reported by the transcript provider. Callers distinguish a bad URL
// or a video without captions from an actual provider failure.
var (
	ErrInvalidURL  = errors.New("invalid youtube url")
	ErrUnavailable = errors.New("transcript unavailable")
	ErrProvider    = errors.New("transcript provider failure")
)

// Segment is a single caption segment with start/end offsets in seconds
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript holds the caption text for one video. It is immutable after
// fetch; a session that loads a new video gets a new Transcript.
type Transcript struct {
	VideoID   string    `json:"video_id"`
	Segments  []Segment `json:"segments,omitempty"`
	Text      string    `json:"text"`
	Language  string    `json:"language,omitempty"`
	Cached    bool      `json:"cached"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Summary describes a loaded transcript back to the caller
type Summary struct {
	VideoID      string `json:"video_id"`
	URL          string `json:"url"`
	Title        string `json:"title,omitempty"`
	Channel      string `json:"channel,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Language     string `json:"language,omitempty"`
	SegmentCount int    `json:"segment_count"`
	CharCount    int    `json:"char_count"`
	Cached       bool   `json:"cached"`
	Preview      string `json:"preview"`
}

// SegmentCount returns the number of merged segments. Cache hits carry only
// the rendered text, so the count falls back to the number of rendered
// lines, which is one per segment.
func (t *Transcript) SegmentCount() int {
	if len(t.Segments) > 0 {
		return len(t.Segments)
	}

	text := strings.TrimSpace(t.Text)
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

// Preview returns the first n characters of the transcript text for
// display purposes
func (t *Transcript) Preview(n int) string {
	text := strings.TrimSpace(t.Text)
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}

// FormatTimestamp converts seconds to HH:MM:SS format
func FormatTimestamp(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// Render formats merged segments as timestamped lines, one sentence per line
func Render(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&sb, "[%s - %s] %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End), strings.TrimSpace(seg.Text))
	}
	return sb.String()
}
