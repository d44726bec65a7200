package llm

import "strings"

const truncationMarker = "\n[... transcript truncated for length ...]\n"

// PromptBuilder constructs the system prompt sent with every question:
// the base instructions followed by the video transcript, trimmed to the
// configured context budget.
type PromptBuilder struct {
	system     string
	transcript string
	maxChars   int
}

// NewPromptBuilder creates a prompt builder with base system instructions
func NewPromptBuilder(system string) *PromptBuilder {
	return &PromptBuilder{system: system}
}

// WithTranscript sets the transcript context
func (pb *PromptBuilder) WithTranscript(text string) *PromptBuilder {
	pb.transcript = text
	return pb
}

// WithMaxContextChars caps the transcript portion of the prompt
func (pb *PromptBuilder) WithMaxContextChars(n int) *PromptBuilder {
	pb.maxChars = n
	return pb
}

// Build constructs the final system prompt
func (pb *PromptBuilder) Build() string {
	var parts []string

	parts = append(parts, strings.TrimSpace(pb.system))

	if pb.transcript != "" {
		body := pb.transcript
		if pb.maxChars > 0 {
			body = TruncateMiddle(body, pb.maxChars)
		}
		parts = append(parts, "\n## Video Transcript:\n"+strings.TrimSpace(body))
	}

	return strings.Join(parts, "\n")
}

// TruncateMiddle trims text to at most max characters by cutting from the
// middle. The opening usually carries the video's framing and the closing
// its conclusions, so both ends are kept: two thirds of the budget from the
// head, the rest from the tail.
func TruncateMiddle(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	if max <= len(truncationMarker) {
		return text[:max]
	}

	budget := max - len(truncationMarker)
	head := budget * 2 / 3
	tail := budget - head

	// Cut on line boundaries where possible so timestamped lines stay whole
	headPart := text[:head]
	if i := strings.LastIndexByte(headPart, '\n'); i > 0 {
		headPart = headPart[:i]
	}
	tailPart := text[len(text)-tail:]
	if i := strings.IndexByte(tailPart, '\n'); i >= 0 && i < len(tailPart)-1 {
		tailPart = tailPart[i+1:]
	}

	return headPart + truncationMarker + tailPart
}
