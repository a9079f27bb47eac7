package llm

import "context"

// Provider is the core abstraction for LLM interaction.
// Consumers call Complete with a Request and receive free-form text.
type Provider interface {
	// Complete sends one instruction/content pair and returns the raw
	// completion text. No conversation state is kept between calls.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// Instruction is sent as the system prompt.
	Instruction string

	// Content is the user turn: source text, a fact, or submitted answers.
	Content string

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64
}

// Completion holds the LLM's output.
type Completion struct {
	// Text is the raw completion. It is usually JSON but nothing is
	// guaranteed about its shape.
	Text string

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// turns splits a request into system and user text. Providers reject an
// empty user turn, so an instruction-only request is sent as the user turn.
func turns(req Request) (system, user string) {
	if req.Content == "" {
		return "", req.Instruction
	}
	return req.Instruction, req.Content
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
