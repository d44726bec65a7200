package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethanbaker/ytchat/internal/llm"
	"github.com/ethanbaker/ytchat/internal/session"
	"github.com/ethanbaker/ytchat/internal/transcript"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves canned transcripts per video ID
type fakeProvider struct {
	transcripts map[string]*transcript.Transcript
	err         error
	calls       int
}

func (f *fakeProvider) Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.transcripts[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: no captions", transcript.ErrUnavailable)
	}
	return t, nil
}

// fakeCompleter replays canned chunks and records the last request
type fakeCompleter struct {
	chunks    []string
	openErr   error
	streamErr error
	calls     int
	lastReq   llm.Request
}

func (f *fakeCompleter) StreamCompletion(ctx context.Context, req llm.Request) (llm.Stream, error) {
	f.calls++
	f.lastReq = req
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeStream{chunks: f.chunks, err: f.streamErr}, nil
}

type fakeStream struct {
	chunks []string
	err    error
	i      int
	cur    string
	closed bool
}

func (s *fakeStream) Next() bool {
	if s.i >= len(s.chunks) {
		return false
	}
	s.cur = s.chunks[s.i]
	s.i++
	return true
}

func (s *fakeStream) Text() string { return s.cur }
func (s *fakeStream) Err() error   { return s.err }
func (s *fakeStream) Close() error { s.closed = true; return nil }

func testOrchestrator(provider *fakeProvider, completer *fakeCompleter) *Orchestrator {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	prompts := &llm.Prompts{System: "Answer from the transcript.", MaxContextChars: 24000}
	return New(provider, completer, prompts, log)
}

func drain(t *testing.T, stream *AnswerStream) string {
	t.Helper()
	for stream.Next() {
	}
	require.NoError(t, stream.Err())
	return stream.Answer()
}

func newTranscript(videoID, text string) *transcript.Transcript {
	return &transcript.Transcript{VideoID: videoID, Text: text}
}

func TestSetVideo(t *testing.T) {
	ctx := context.Background()

	t.Run("loads transcript and builds summary", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "[00:00:00 - 00:00:04] hello world\n"),
		}}
		orch := testOrchestrator(provider, &fakeCompleter{})
		sess := mustSession(t)

		summary, err := orch.SetVideo(ctx, sess, "https://youtu.be/dQw4w9WgXcQ")

		require.NoError(t, err)
		assert.Equal(t, "dQw4w9WgXcQ", summary.VideoID)
		assert.NotEmpty(t, summary.Preview)
		assert.NotNil(t, sess.Transcript())
	})

	t.Run("invalid url leaves prior transcript unchanged", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "prior transcript"),
		}}
		orch := testOrchestrator(provider, &fakeCompleter{})
		sess := mustSession(t)

		_, err := orch.SetVideo(ctx, sess, "https://youtu.be/dQw4w9WgXcQ")
		require.NoError(t, err)

		_, err = orch.SetVideo(ctx, sess, "not a url")
		assert.ErrorIs(t, err, transcript.ErrInvalidURL)

		// The previously loaded transcript is untouched
		require.NotNil(t, sess.Transcript())
		assert.Equal(t, "prior transcript", sess.Transcript().Text)
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("captions disabled", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{}}
		orch := testOrchestrator(provider, &fakeCompleter{})
		sess := mustSession(t)

		_, err := orch.SetVideo(ctx, sess, "https://youtu.be/dQw4w9WgXcQ")

		assert.ErrorIs(t, err, transcript.ErrUnavailable)
		assert.Nil(t, sess.Transcript())
	})

	t.Run("provider failure", func(t *testing.T) {
		provider := &fakeProvider{err: fmt.Errorf("%w: connection refused", transcript.ErrProvider)}
		orch := testOrchestrator(provider, &fakeCompleter{})
		sess := mustSession(t)

		_, err := orch.SetVideo(ctx, sess, "https://youtu.be/dQw4w9WgXcQ")

		assert.ErrorIs(t, err, transcript.ErrProvider)
	})

	t.Run("provider timeout", func(t *testing.T) {
		provider := &fakeProvider{err: context.DeadlineExceeded}
		orch := testOrchestrator(provider, &fakeCompleter{})
		sess := mustSession(t)

		_, err := orch.SetVideo(ctx, sess, "https://youtu.be/dQw4w9WgXcQ")

		assert.ErrorIs(t, err, ErrTimeout)
	})
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	configure := func(t *testing.T, orch *Orchestrator, sess *session.Session, videoURL string) {
		t.Helper()
		require.NoError(t, orch.SetCredential(sess, "test-key"))
		_, err := orch.SetVideo(ctx, sess, videoURL)
		require.NoError(t, err)
	}

	t.Run("before configuration returns NotConfigured without remote call", func(t *testing.T) {
		completer := &fakeCompleter{chunks: []string{"never"}}
		orch := testOrchestrator(&fakeProvider{}, completer)
		sess := mustSession(t)

		_, err := orch.Ask(ctx, sess, "what is this about?")

		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Equal(t, 0, completer.calls)
	})

	t.Run("credential without transcript is still NotConfigured", func(t *testing.T) {
		completer := &fakeCompleter{chunks: []string{"never"}}
		orch := testOrchestrator(&fakeProvider{}, completer)
		sess := mustSession(t)
		require.NoError(t, orch.SetCredential(sess, "test-key"))

		_, err := orch.Ask(ctx, sess, "what is this about?")

		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Equal(t, 0, completer.calls)
	})

	t.Run("successful ask appends exactly one exchange", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "a video about testing"),
		}}
		completer := &fakeCompleter{chunks: []string{"it is ", "about ", "testing"}}
		orch := testOrchestrator(provider, completer)
		sess := mustSession(t)
		configure(t, orch, sess, "https://youtu.be/dQw4w9WgXcQ")

		stream, err := orch.Ask(ctx, sess, "what is this video about?")
		require.NoError(t, err)

		answer := drain(t, stream)
		assert.Equal(t, "it is about testing", answer)

		msgs := sess.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, "user", msgs[0].Role)
		assert.Equal(t, "what is this video about?", msgs[0].Content)
		assert.Equal(t, "assistant", msgs[1].Role)
		assert.Equal(t, "it is about testing", msgs[1].Content)
	})

	t.Run("prior history travels with the next request", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "a video about testing"),
		}}
		completer := &fakeCompleter{chunks: []string{"answer"}}
		orch := testOrchestrator(provider, completer)
		sess := mustSession(t)
		configure(t, orch, sess, "https://youtu.be/dQw4w9WgXcQ")

		stream, err := orch.Ask(ctx, sess, "first question")
		require.NoError(t, err)
		drain(t, stream)

		stream, err = orch.Ask(ctx, sess, "second question")
		require.NoError(t, err)
		drain(t, stream)

		require.Len(t, completer.lastReq.History, 2)
		assert.Equal(t, "first question", completer.lastReq.History[0].Content)
		assert.Equal(t, "answer", completer.lastReq.History[1].Content)
		assert.Equal(t, "second question", completer.lastReq.Question)
		assert.Len(t, sess.Messages(), 4)
	})

	t.Run("replacing the video switches the prompt context", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "OLD TRANSCRIPT TEXT"),
			"HNpYAz_I4yY": newTranscript("HNpYAz_I4yY", "NEW TRANSCRIPT TEXT"),
		}}
		completer := &fakeCompleter{chunks: []string{"ok"}}
		orch := testOrchestrator(provider, completer)
		sess := mustSession(t)
		configure(t, orch, sess, "https://youtu.be/dQw4w9WgXcQ")

		_, err := orch.SetVideo(ctx, sess, "https://youtu.be/HNpYAz_I4yY")
		require.NoError(t, err)

		stream, err := orch.Ask(ctx, sess, "what changed?")
		require.NoError(t, err)
		drain(t, stream)

		assert.Contains(t, completer.lastReq.System, "NEW TRANSCRIPT TEXT")
		assert.NotContains(t, completer.lastReq.System, "OLD TRANSCRIPT TEXT")
	})

	t.Run("upstream open failure", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "text"),
		}}
		completer := &fakeCompleter{openErr: errors.New("connection reset")}
		orch := testOrchestrator(provider, completer)
		sess := mustSession(t)
		configure(t, orch, sess, "https://youtu.be/dQw4w9WgXcQ")

		_, err := orch.Ask(ctx, sess, "question")

		assert.ErrorIs(t, err, ErrUpstream)
		assert.Equal(t, 0, sess.MessageCount())
	})

	t.Run("broken stream leaves history unchanged", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "text"),
		}}
		completer := &fakeCompleter{chunks: []string{"partial "}, streamErr: errors.New("stream cut")}
		orch := testOrchestrator(provider, completer)
		sess := mustSession(t)
		configure(t, orch, sess, "https://youtu.be/dQw4w9WgXcQ")

		stream, err := orch.Ask(ctx, sess, "question")
		require.NoError(t, err)

		for stream.Next() {
		}

		assert.ErrorIs(t, stream.Err(), ErrUpstream)
		assert.Equal(t, 0, sess.MessageCount())
	})

	t.Run("clear history keeps transcript and credential", func(t *testing.T) {
		provider := &fakeProvider{transcripts: map[string]*transcript.Transcript{
			"dQw4w9WgXcQ": newTranscript("dQw4w9WgXcQ", "text"),
		}}
		completer := &fakeCompleter{chunks: []string{"ok"}}
		orch := testOrchestrator(provider, completer)
		sess := mustSession(t)
		configure(t, orch, sess, "https://youtu.be/dQw4w9WgXcQ")

		stream, err := orch.Ask(ctx, sess, "question")
		require.NoError(t, err)
		drain(t, stream)
		require.Len(t, sess.Messages(), 2)

		orch.ClearHistory(sess)

		assert.Equal(t, 0, sess.MessageCount())
		assert.NotNil(t, sess.Transcript())
		assert.NotEmpty(t, sess.Credential())
	})
}

func mustSession(t *testing.T) *session.Session {
	t.Helper()
	store := session.NewStore()
	sess, err := store.Create(context.Background())
	require.NoError(t, err)
	return sess
}
