package session

import (
	"sync"
	"time"

	"github.com/ethanbaker/ytchat/internal/transcript"
	"github.com/google/uuid"
)

// Message is a single entry in the conversation history. Messages are
// append-only and never mutated after creation.
type Message struct {
	Role      string    `json:"role"` // user or assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the in-memory state for one user's conversation about one
// video. All state lives in the session; nothing is shared across sessions
// and nothing is persisted.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	VideoID  string `json:"video_id,omitempty"`
	VideoURL string `json:"video_url,omitempty"`

	transcript *transcript.Transcript
	apiKey     string
	messages   []Message

	mu sync.RWMutex
}

func newSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetCredential stores the API credential for this session. It is held only
// in memory and never serialized.
func (s *Session) SetCredential(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = apiKey
	s.UpdatedAt = time.Now().UTC()
}

// Credential returns the session's API credential
func (s *Session) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// SetTranscript replaces the session's video and cached transcript. Any
// previously loaded transcript is discarded.
func (s *Session) SetTranscript(videoURL string, t *transcript.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.VideoID = t.VideoID
	s.VideoURL = videoURL
	s.transcript = t
	s.UpdatedAt = time.Now().UTC()
}

// Transcript returns the cached transcript, or nil if no video is loaded
func (s *Session) Transcript() *transcript.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript
}

// AppendExchange appends one completed user/assistant exchange to the
// history, in order
func (s *Session) AppendExchange(question, answer string) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages,
		Message{Role: "user", Content: question, CreatedAt: now},
		Message{Role: "assistant", Content: answer, CreatedAt: now},
	)
	s.UpdatedAt = now
}

// Messages returns a copy of the conversation history in insertion order
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the number of messages in the history
func (s *Session) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// ClearHistory discards the conversation history. The transcript and
// credential are kept.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.UpdatedAt = time.Now().UTC()
}

// Snapshot returns the mutable identity fields read under the lock, so
// handlers can serialize a session while other requests mutate it
func (s *Session) Snapshot() (videoID, videoURL string, createdAt, updatedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.VideoID, s.VideoURL, s.CreatedAt, s.UpdatedAt
}

// Touch marks the session as recently used
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now().UTC()
}

// LastActive returns the time of the session's last mutation or use
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UpdatedAt
}
