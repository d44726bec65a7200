package sdk

import "time"

/** Requests */

// CreateSessionRequest optionally carries the model API key up front
type CreateSessionRequest struct {
	APIKey string `json:"api_key,omitempty"`
}

// SetCredentialRequest sets or replaces the session's model API key
type SetCredentialRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// SetVideoRequest loads a video's transcript into the session
type SetVideoRequest struct {
	URL string `json:"url" binding:"required"`
}

// AskRequest sends a question about the loaded video
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

/** Responses */

// Message is one entry of the conversation history
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session describes a chat session. The API credential itself is never
// echoed back, only whether one is set.
type Session struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	VideoID          string    `json:"video_id,omitempty"`
	VideoURL         string    `json:"video_url,omitempty"`
	HasCredential    bool      `json:"has_credential"`
	TranscriptLoaded bool      `json:"transcript_loaded"`
	Messages         []Message `json:"messages,omitempty"`
}

// TranscriptSummary describes a successfully loaded transcript
type TranscriptSummary struct {
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
