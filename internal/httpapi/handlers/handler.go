package handlers

import (
	"github.com/suPer8Hu/bundle-chat/internal/ai"
	"github.com/suPer8Hu/bundle-chat/internal/chat"
	"github.com/suPer8Hu/bundle-chat/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	ChatSvc  *chat.Service
	Registry *ai.Registry
	Log      *zap.Logger
}

func NewHandler(db *gorm.DB, cfg config.Config, registry *ai.Registry, log *zap.Logger) *Handler {
	repo := chat.NewRepo(db)
	model := cfg.OllamaModel
	if cfg.AIProvider == "openrouter" {
		model = cfg.OpenRouterModel
	}
	chatSvc := chat.NewService(repo, registry, cfg.AIProvider, model, cfg.ChatContextWindowSize)
	return &Handler{ChatSvc: chatSvc, Registry: registry, Log: log}
}
