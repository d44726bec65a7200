package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethanbaker/ytchat/internal/llm"
	"github.com/ethanbaker/ytchat/internal/session"
)

// AnswerStream is the streamed answer to one question: a finite sequence of
// text fragments pulled by the caller. When the underlying stream ends
// cleanly, the full exchange is appended to the session history exactly
// once. A consumer that stops pulling (disconnect) cancels the underlying
// call through its context and nothing is recorded.
type AnswerStream struct {
	inner    llm.Stream
	sess     *session.Session
	question string

	answer   strings.Builder
	finished bool
	err      error
}

// Next advances to the next text fragment. It returns false when the
// stream is exhausted or broken; check Err afterwards.
func (a *AnswerStream) Next() bool {
	if a.finished {
		return false
	}

	if a.inner.Next() {
		a.answer.WriteString(a.inner.Text())
		return true
	}

	a.finished = true

	if err := a.inner.Err(); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// Consumer walked away; surface as-is, record nothing
			a.err = err
		case errors.Is(err, context.DeadlineExceeded):
			a.err = fmt.Errorf("%w: %v", ErrTimeout, err)
		default:
			a.err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return false
	}

	a.sess.AppendExchange(a.question, a.answer.String())
	return false
}

// Text returns the current fragment
func (a *AnswerStream) Text() string {
	return a.inner.Text()
}

// Answer returns everything streamed so far
func (a *AnswerStream) Answer() string {
	return a.answer.String()
}

// Err reports why the stream stopped, or nil on clean completion
func (a *AnswerStream) Err() error {
	return a.err
}

// Close releases the underlying network stream
func (a *AnswerStream) Close() error {
	return a.inner.Close()
}
