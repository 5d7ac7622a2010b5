package ai

import "context"

// Message is one chat turn. The json form is the OpenAI/Ollama wire shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider produces one assistant reply for a conversation history given
// oldest first.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
