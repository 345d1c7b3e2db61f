package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for talking to a language model.
type Provider interface {
	// Generate sends a prompt and returns the model output.
	// When the request carries a Schema the Content is validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	System   string
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When set the
	// provider uses its native structured output mechanism.
	Schema *Schema

	// JSONOutput asks for a bare JSON document without a schema. Providers
	// that have a JSON mime type setting use it, the rest ignore the flag.
	JSONOutput bool

	MaxTokens   int
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds a single-turn request.
func UserPrompt(prompt string, temperature float64) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		JSONOutput:  true,
		Temperature: temperature,
	}
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema and keys the compiled schema cache.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
