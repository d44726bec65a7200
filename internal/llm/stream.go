package llm

import (
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/packages/ssestream"
)

// sseStream adapts the SDK's SSE stream to the Stream interface, skipping
// chunks that carry no text delta (role announcements, finish reasons)
type sseStream struct {
	inner *ssestream.Stream[openai.ChatCompletionChunk]
	text  string
}

func (s *sseStream) Next() bool {
	for s.inner.Next() {
		chunk := s.inner.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			s.text = delta
			return true
		}
	}
	return false
}

func (s *sseStream) Text() string {
	return s.text
}

func (s *sseStream) Err() error {
	return s.inner.Err()
}

func (s *sseStream) Close() error {
	return s.inner.Close()
}
