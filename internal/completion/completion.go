// Package completion calls the external chat-completion provider on behalf
// of the bridge.
//
// The bridge treats the provider as an opaque collaborator: one request in,
// one answer out, no retries and no streaming. Failures are classified so the
// bridge can apply its failure policy:
//   - *StatusError: the provider answered with a non-2xx status
//   - *TransportError: the provider could not be reached
//   - ErrNoContent: the provider answered 2xx but with nothing usable
package completion

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoContent is returned when a successful provider response carries no
// parseable message content.
var ErrNoContent = errors.New("completion: provider returned no content")

// Request is a single completion call.
type Request struct {
	// Token is the provider secret resolved for this call.
	Token string
	// System is the persona instruction sent ahead of the user message.
	System string
	// Message is the user's message.
	Message string
	// IncludeReasoning asks for the provider's reasoning text, when it has any.
	IncludeReasoning bool
}

// Usage reports provider token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Result is a successful completion.
type Result struct {
	ID        string
	Model     string
	Content   string
	Reasoning string
	Usage     Usage
}

// Completer performs one completion call.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Result, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (*Result, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion: provider status %d: %s", e.StatusCode, e.Body)
}

// TransportError is a failure to complete the HTTP exchange with the
// provider (DNS, connect, timeout, reset).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion: provider unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
