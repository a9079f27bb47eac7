package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/logging"
)

// scriptedProvider returns one fixed completion.
type scriptedProvider struct {
	resp *Completion
	err  error
	got  Request
	ctx  context.Context
}

func (s *scriptedProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	s.got, s.ctx = req, ctx
	return s.resp, s.err
}

func (s *scriptedProvider) ModelID() string { return "scripted" }

func TestCompleter_PassesSettings(t *testing.T) {
	p := &scriptedProvider{resp: &Completion{Text: "raw", StopReason: "end"}}
	cfg := DefaultConfig()
	cfg.MaxTokens = 321
	cfg.Temperature = 0.2
	cfg.Timeout = time.Minute

	c := NewCompleter(p, cfg, logging.Nop())
	text, err := c.Complete(context.Background(), "instr", "content")
	require.NoError(t, err)
	assert.Equal(t, "raw", text)
	assert.Equal(t, Request{Instruction: "instr", Content: "content", MaxTokens: 321, Temperature: 0.2}, p.got)

	_, hasDeadline := p.ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestCompleter_TruncatedTextReturned(t *testing.T) {
	p := &scriptedProvider{resp: &Completion{Text: `{"question":"a"}`, StopReason: "max_tokens"}}
	text, err := NewCompleter(p, DefaultConfig(), logging.Nop()).Complete(context.Background(), "i", "c")
	require.NoError(t, err)
	assert.Equal(t, `{"question":"a"}`, text)
}

func TestCompleter_TruncatedEmptyIsError(t *testing.T) {
	p := &scriptedProvider{resp: &Completion{Text: "  ", StopReason: "max_tokens"}}
	_, err := NewCompleter(p, DefaultConfig(), logging.Nop()).Complete(context.Background(), "i", "c")
	var maxTok *ErrMaxTokensExceeded
	assert.True(t, errors.As(err, &maxTok))
}

func TestCompleter_PropagatesErrors(t *testing.T) {
	p := &scriptedProvider{err: &ErrRejected{StatusCode: 400}}
	_, err := NewCompleter(p, DefaultConfig(), logging.Nop()).Complete(context.Background(), "i", "c")
	var rejected *ErrRejected
	assert.True(t, errors.As(err, &rejected))
}
