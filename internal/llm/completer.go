package llm

import (
	"context"
	"strings"
	"time"

	"github.com/abhisek/quizforge/internal/logging"
)

// Completer adapts a Provider to the two-string completion contract used
// by the quiz pipelines. It is stateless and safe for concurrent use.
type Completer struct {
	provider    Provider
	maxTokens   int
	temperature float64
	timeout     time.Duration
	log         *logging.Logger
}

// NewCompleter binds a provider to the token, temperature and timeout
// settings of cfg.
func NewCompleter(p Provider, cfg Config, log *logging.Logger) *Completer {
	return &Completer{
		provider:    p,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		log:         log,
	}
}

// Complete runs one completion and returns its raw text. Truncated output
// is returned as-is; only a truncation with no text is an error.
func (c *Completer) Complete(ctx context.Context, instruction, content string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.provider.Complete(ctx, Request{
		Instruction: instruction,
		Content:     content,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	if resp.StopReason == "max_tokens" {
		if strings.TrimSpace(resp.Text) == "" {
			return "", &ErrMaxTokensExceeded{MaxTokens: c.maxTokens}
		}
		c.log.Warn("completion truncated at max tokens",
			"purpose", PurposeFrom(ctx), "model", resp.Model, "max_tokens", c.maxTokens)
	}
	return resp.Text, nil
}
