package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedClient replays queued replies in order, recording every request.
// It backs handler and service tests; once the script runs dry it returns
// the fallback reply, or an error when Fail is set.
type ScriptedClient struct {
	mu       sync.Mutex
	script   []string
	Fallback string
	Fail     error

	Systems []string
	Calls   [][]Turn
}

func NewScriptedClient(replies ...string) *ScriptedClient {
	return &ScriptedClient{
		script:   replies,
		Fallback: "Tell me more about that.",
	}
}

func (client *ScriptedClient) Complete(ctx context.Context, system string, turns []Turn, maxTokens int) (string, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	client.Systems = append(client.Systems, system)
	client.Calls = append(client.Calls, turns)

	if client.Fail != nil {
		return "", client.Fail
	}
	if len(client.script) > 0 {
		next := client.script[0]
		client.script = client.script[1:]
		return next, nil
	}
	if client.Fallback == "" {
		return "", fmt.Errorf("scripted client exhausted")
	}
	return client.Fallback, nil
}

func (client *ScriptedClient) CallCount() int {
	client.mu.Lock()
	defer client.mu.Unlock()
	return len(client.Calls)
}
