// Package llm is the boundary to the hosted model API. The rest of the
// application only sees the Client interface; the Gemini adapter and the
// scripted test double both live behind it.
package llm

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message of a conversation history.
type Turn struct {
	Role    string
	Content string
}

// Client produces a single completion for a system instruction plus an
// ordered conversation history. No retries, no streaming: a failed or slow
// call is the caller's problem to time out and surface.
type Client interface {
	Complete(ctx context.Context, system string, turns []Turn, maxTokens int) (string, error)
}
