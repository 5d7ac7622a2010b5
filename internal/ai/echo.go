package ai

import (
	"context"
	"strings"
)

// EchoProvider answers without calling any model. It replies to the most
// recent user message and is meant for local runs and tests.
type EchoProvider struct {
	Prefix string
}

func NewEchoProvider() *EchoProvider {
	return &EchoProvider{Prefix: "You said: "}
}

func (p *EchoProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return p.Prefix + strings.TrimSpace(messages[i].Content), nil
		}
	}
	return "Hi, how can I help you?", nil
}
