package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/suPer8Hu/bundle-chat/internal/ai"
	"gorm.io/gorm"
)

var (
	ErrEmptyMessage = errors.New("chat: message is empty")
	// ErrInvalidConversationID is returned for ids the store cannot hold.
	ErrInvalidConversationID = errors.New("chat: invalid conversation id")
	// ErrProvider wraps failures of the assistant model.
	ErrProvider = errors.New("chat: provider failed")
)

const (
	defaultTitle    = "New chat"
	maxConversation = 64
)

type Service struct {
	repo              *Repo
	registry          *ai.Registry
	provider          string
	model             string
	contextWindowSize int
}

func NewService(repo *Repo, registry *ai.Registry, provider, model string, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	return &Service{
		repo:              repo,
		registry:          registry,
		provider:          provider,
		model:             model,
		contextWindowSize: contextWindowSize,
	}
}

func validConversationID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidConversationID)
	case len(id) > maxConversation:
		return fmt.Errorf("%w: longer than %d", ErrInvalidConversationID, maxConversation)
	}
	return nil
}

// ensureConversation loads conversationID, creating it when it does not exist.
// An empty id gets a fresh UUID.
func (s *Service) ensureConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	if err := validConversationID(conversationID); err != nil {
		return nil, err
	}

	c, err := s.repo.GetConversation(ctx, conversationID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c = &Conversation{
		ConversationID: conversationID,
		Title:          defaultTitle,
		Provider:       s.provider,
		Model:          s.model,
	}
	if err := s.repo.CreateConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Respond stores the user message, asks the conversation's provider for a
// reply using the recent history, stores the reply and returns it. Uploaded
// chunks matching the message go first, as a system message.
// The user message stays stored when the provider fails.
func (s *Service) Respond(ctx context.Context, conversationID, content string) (string, string, error) {
	if strings.TrimSpace(content) == "" {
		return "", "", ErrEmptyMessage
	}

	conv, err := s.ensureConversation(ctx, conversationID)
	if err != nil {
		return "", "", err
	}
	cid := conv.ConversationID

	if err := s.repo.InsertMessage(ctx, &Message{ConversationID: cid, Role: "user", Content: content}); err != nil {
		return cid, "", err
	}

	provider, err := s.registry.Get(ctx, conv.Provider, conv.Model)
	if err != nil {
		return cid, "", fmt.Errorf("%w: %w", ErrProvider, err)
	}

	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, cid, s.contextWindowSize)
	if err != nil {
		return cid, "", err
	}

	// provider expects ASC
	providerMsgs := make([]ai.Message, 0, len(recentDesc))
	for i := len(recentDesc) - 1; i >= 0; i-- {
		m := recentDesc[i]
		providerMsgs = append(providerMsgs, ai.Message{Role: m.Role, Content: m.Content})
	}

	docs, err := s.repo.ListDocuments(ctx, cid)
	if err != nil {
		return cid, "", err
	}
	if picked := selectChunks(docs, content, maxContextChunks); len(picked) > 0 {
		providerMsgs = append([]ai.Message{documentContext(picked)}, providerMsgs...)
	}

	reply, err := provider.Chat(ctx, providerMsgs)
	if err != nil {
		return cid, "", fmt.Errorf("%w: %w", ErrProvider, err)
	}

	if err := s.repo.InsertMessage(ctx, &Message{ConversationID: cid, Role: "assistant", Content: reply}); err != nil {
		return cid, "", err
	}
	return cid, reply, nil
}

// GetConversation returns a conversation with its full history, or
// gorm.ErrRecordNotFound.
func (s *Service) GetConversation(ctx context.Context, conversationID string) (*Conversation, []Message, error) {
	c, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	return c, msgs, nil
}

func (s *Service) DeleteConversation(ctx context.Context, conversationID string) error {
	return s.repo.DeleteConversation(ctx, conversationID)
}
