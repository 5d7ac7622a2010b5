package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// OllamaProvider talks to the non-streaming /api/chat endpoint of an Ollama server.
type OllamaProvider struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

type ollamaRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3:latest"
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  newProviderClient(),
	}
}

func (p *OllamaProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	var out ollamaResponse
	in := ollamaRequest{Model: p.Model, Messages: messages}
	if err := postJSON(ctx, p.Client, p.BaseURL+"/api/chat", nil, in, &out); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	if out.Error != "" {
		return "", errors.New("ollama: " + out.Error)
	}
	return out.Message.Content, nil
}
