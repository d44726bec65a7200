package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethanbaker/ytchat/internal/llm"
	"github.com/ethanbaker/ytchat/internal/session"
	"github.com/ethanbaker/ytchat/internal/transcript"
	"github.com/sirupsen/logrus"
)

// TranscriptProvider fetches the caption transcript for a video ID
type TranscriptProvider interface {
	Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error)
}

// MetadataLookup resolves display details for a video ID. Optional.
type MetadataLookup interface {
	Lookup(ctx context.Context, videoID string) (*transcript.Metadata, error)
}

// Orchestrator wires one user turn through the external collaborators:
// transcript provider on video load, hosted model on each question. All
// conversational state lives in the session passed to each call; the
// orchestrator itself holds only collaborators and settings.
type Orchestrator struct {
	provider  TranscriptProvider
	completer llm.Completer
	metadata  MetadataLookup
	prompts   *llm.Prompts
	timeout   time.Duration
	log       *logrus.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithMetadata enables video metadata enrichment of transcript summaries
func WithMetadata(m MetadataLookup) Option {
	return func(o *Orchestrator) { o.metadata = m }
}

// WithTimeout bounds each remote call
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New creates an orchestrator
func New(provider TranscriptProvider, completer llm.Completer, prompts *llm.Prompts, log *logrus.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:  provider,
		completer: completer,
		prompts:   prompts,
		timeout:   60 * time.Second,
		log:       log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetCredential stores the user's model API key on the session
func (o *Orchestrator) SetCredential(sess *session.Session, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: empty api key", ErrNotConfigured)
	}
	sess.SetCredential(apiKey)
	return nil
}

// SetVideo validates the URL, fetches the transcript, and installs it on
// the session, replacing any previously loaded video. On failure the
// session keeps its prior transcript.
func (o *Orchestrator) SetVideo(ctx context.Context, sess *session.Session, rawURL string) (*transcript.Summary, error) {
	videoID, err := transcript.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	t, err := o.provider.Fetch(fetchCtx, videoID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: transcript fetch: %v", ErrTimeout, err)
		}
		return nil, err
	}

	sess.SetTranscript(rawURL, t)

	o.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"video_id":   videoID,
		"chars":      len(t.Text),
		"cached":     t.Cached,
	}).Info("transcript loaded")

	summary := &transcript.Summary{
		VideoID:      videoID,
		URL:          rawURL,
		Language:     t.Language,
		SegmentCount: t.SegmentCount(),
		CharCount:    len(t.Text),
		Cached:       t.Cached,
		Preview:      t.Preview(200),
	}

	// Metadata is a nicety; its failure never fails the operation
	if o.metadata != nil {
		if meta, err := o.metadata.Lookup(fetchCtx, videoID); err != nil {
			o.log.WithError(err).WithField("video_id", videoID).Warn("video metadata lookup failed")
		} else {
			summary.Title = meta.Title
			summary.Channel = meta.Channel
			summary.Duration = meta.Duration
		}
	}

	return summary, nil
}

// Ask sends a question about the loaded video to the model and returns the
// streamed answer. The exchange is appended to the session history only
// when the stream completes cleanly; a failed or abandoned ask leaves the
// session in its prior state.
func (o *Orchestrator) Ask(ctx context.Context, sess *session.Session, question string) (*AnswerStream, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", ErrNotConfigured)
	}
	if sess.Credential() == "" {
		return nil, fmt.Errorf("%w: no api key set", ErrNotConfigured)
	}

	t := sess.Transcript()
	if t == nil {
		return nil, fmt.Errorf("%w: no video loaded", ErrNotConfigured)
	}

	system := llm.NewPromptBuilder(o.prompts.System).
		WithTranscript(t.Text).
		WithMaxContextChars(o.prompts.MaxContextChars).
		Build()

	history := sess.Messages()
	priorTurns := make([]llm.Message, 0, len(history))
	for _, m := range history {
		priorTurns = append(priorTurns, llm.Message{Role: m.Role, Content: m.Content})
	}

	stream, err := o.completer.StreamCompletion(ctx, llm.Request{
		APIKey:   sess.Credential(),
		System:   system,
		History:  priorTurns,
		Question: question,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	o.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"history":    len(history),
	}).Debug("question sent to model")

	return &AnswerStream{
		inner:    stream,
		sess:     sess,
		question: question,
	}, nil
}

// ClearHistory discards the session's conversation history, keeping the
// transcript and credential
func (o *Orchestrator) ClearHistory(sess *session.Session) {
	sess.ClearHistory()
	o.log.WithField("session_id", sess.ID).Info("chat history cleared")
}
