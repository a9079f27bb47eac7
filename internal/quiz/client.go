package quiz

import "context"

// CompletionClient executes one prompt and returns the raw completion text.
// Implementations must be safe for concurrent use and keep no state
// between calls.
type CompletionClient interface {
	Complete(ctx context.Context, instruction, content string) (string, error)
}

// CompletionFunc adapts a function to CompletionClient.
type CompletionFunc func(ctx context.Context, instruction, content string) (string, error)

func (f CompletionFunc) Complete(ctx context.Context, instruction, content string) (string, error) {
	return f(ctx, instruction, content)
}
