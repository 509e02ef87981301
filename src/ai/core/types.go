package core

import "context"

// Options controls model behavior; fields are optional per provider.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
	SystemPrompt        string
}

// Client is a provider-agnostic interface for the one LLM operation the
// commander needs: send input, get text back.
type Client interface {
	Respond(ctx context.Context, input string, opts Options) (string, error)
}
