// Package ai is a small client for a messages-style generative AI API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyCompletion is returned when the service answers without text.
var ErrEmptyCompletion = errors.New("scribe: empty completion")

// Role of a conversation turn.
type Role string

// Roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request.
type Request struct {
	// System is the system prompt.
	System string

	Messages []Message

	// MaxTokens overrides the client default when positive.
	MaxTokens int

	// Temperature is passed through when non-nil.
	Temperature *float64
}

// Prompt builds a request with one user message.
func Prompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Usage reports token accounting for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is a completed message.
type Response struct {
	ID         string
	Model      string
	Text       string
	StopReason string
	Usage      Usage
}

// Completer produces completions. Executors depend on this interface so that
// tests can inject a stub.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (*Response, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("ai: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ai: status %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// Text trims a completion to its first non-empty paragraph when oneLine is
// set, or to the whole trimmed text otherwise.
func Text(resp *Response, oneLine bool) string {
	if resp == nil {
		return ""
	}
	s := strings.TrimSpace(resp.Text)
	if oneLine {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = strings.TrimSpace(s[:i])
		}
	}
	return s
}
