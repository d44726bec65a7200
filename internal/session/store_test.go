package session

import (
	"context"
	"testing"
	"time"

	"github.com/ethanbaker/ytchat/internal/transcript"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, sess.ID)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, sess.ID))
	assert.Equal(t, 0, store.Count())

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, sess.ID), ErrNotFound)
}

func TestStoreIsolation(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	a, err := store.Create(ctx)
	require.NoError(t, err)
	b, err := store.Create(ctx)
	require.NoError(t, err)

	a.SetCredential("key-a")
	a.AppendExchange("question", "answer")

	assert.Empty(t, b.Credential())
	assert.Equal(t, 0, b.MessageCount())
}

func TestStorePruneIdle(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	idle, err := store.Create(ctx)
	require.NoError(t, err)
	fresh, err := store.Create(ctx)
	require.NoError(t, err)

	// Backdate the idle session past the cutoff
	idle.mu.Lock()
	idle.UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	idle.mu.Unlock()

	pruned := store.PruneIdle(time.Hour)

	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, store.Count())

	_, err = store.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestSessionHistory(t *testing.T) {
	sess := newSession()

	assert.Equal(t, 0, sess.MessageCount())

	sess.AppendExchange("what is this about?", "a video about testing")

	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "what is this about?", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "a video about testing", msgs[1].Content)

	// History grows append-only, earlier entries untouched
	sess.AppendExchange("anything else?", "no")
	msgs = sess.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "what is this about?", msgs[0].Content)

	sess.ClearHistory()
	assert.Equal(t, 0, sess.MessageCount())
}

func TestSessionTranscriptReplacement(t *testing.T) {
	sess := newSession()
	assert.Nil(t, sess.Transcript())

	first := &transcript.Transcript{VideoID: "dQw4w9WgXcQ", Text: "first transcript"}
	sess.SetTranscript("https://youtu.be/dQw4w9WgXcQ", first)
	assert.Equal(t, "dQw4w9WgXcQ", sess.VideoID)
	assert.Same(t, first, sess.Transcript())

	// A new video replaces the cached transcript
	second := &transcript.Transcript{VideoID: "HNpYAz_I4yY", Text: "second transcript"}
	sess.SetTranscript("https://youtu.be/HNpYAz_I4yY", second)
	assert.Equal(t, "HNpYAz_I4yY", sess.VideoID)
	assert.Same(t, second, sess.Transcript())
}

func TestSessionConcurrentAccess(t *testing.T) {
	sess := newSession()
	done := make(chan struct{})

	// Mutate the session the way a completing ask does while another
	// request reads it for serialization. Fails under the race detector
	// if any field is read without the lock.
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			sess.AppendExchange("question", "answer")
			sess.SetTranscript("https://youtu.be/dQw4w9WgXcQ", &transcript.Transcript{VideoID: "dQw4w9WgXcQ", Text: "text"})
			sess.Touch()
		}
	}()

	for i := 0; i < 200; i++ {
		videoID, videoURL, createdAt, updatedAt := sess.Snapshot()
		_ = videoID
		_ = videoURL
		assert.False(t, createdAt.IsZero())
		assert.False(t, updatedAt.IsZero())
		sess.Messages()
		sess.Credential()
		sess.Transcript()
	}

	<-done
}

func TestJanitorSweep(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	sess.mu.Lock()
	sess.UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
	sess.mu.Unlock()

	log := logrusTestLogger()
	j, err := NewJanitor(store, time.Hour, time.Minute, log)
	require.NoError(t, err)

	j.sweep()
	assert.Equal(t, 0, store.Count())
}
