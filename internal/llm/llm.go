// Package llm sends chat-completion requests to a text-generation endpoint.
//
// Defines a Client interface with OpenAI-compatible, Ollama and Gemini
// implementations. The interface allows swapping providers without changing
// the pipeline. Clients return raw assistant text; interpreting it is the
// caller's job.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role values for Message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat-completion call.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	JSON        bool // ask the provider to constrain output to a JSON object
	Temperature float64
}

// Client sends one request and returns the raw assistant text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError is returned when the endpoint answers with a non-success status.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Body)
}

// ErrEmptyResponse is returned when the endpoint answers with no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
