package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/bundle-chat/internal/chat"
	"github.com/suPer8Hu/bundle-chat/internal/common"
	"github.com/suPer8Hu/bundle-chat/internal/httpapi/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sendMessageReq accepts both conversation_id and the older chat_id field.
type sendMessageReq struct {
	ConversationID *string `json:"conversation_id"`
	ChatID         *string `json:"chat_id"`
	Message        string  `json:"message"`
}

func (r sendMessageReq) id() string {
	switch {
	case r.ConversationID != nil:
		return *r.ConversationID
	case r.ChatID != nil:
		return *r.ChatID
	}
	return ""
}

type messageResp struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "message required")
		return
	}

	cid, reply, err := h.ChatSvc.Respond(c.Request.Context(), req.id(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			common.Fail(c, http.StatusBadRequest, 10002, "message required")
			return
		case errors.Is(err, chat.ErrInvalidConversationID):
			common.Fail(c, http.StatusBadRequest, 10003, err.Error())
			return
		}
		h.Log.Error("respond failed",
			zap.String("conversation_id", cid),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
		common.Fail(c, http.StatusInternalServerError, 50001, fmt.Sprintf("Error processing request: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id":  cid,
		"response": reply,
	})
}

func (h *Handler) GetChat(c *gin.Context) {
	id := c.Param("id")

	conv, msgs, err := h.ChatSvc.GetConversation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "chat not found")
			return
		}
		h.Log.Error("get chat failed", zap.String("conversation_id", id), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load chat")
		return
	}

	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResp{Role: m.Role, Content: m.Content})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       conv.ConversationID,
		"messages": out,
	})
}

func (h *Handler) DeleteChat(c *gin.Context) {
	id := c.Param("id")

	if err := h.ChatSvc.DeleteConversation(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "chat not found")
			return
		}
		h.Log.Error("delete chat failed", zap.String("conversation_id", id), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to delete chat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("chat '%s' deleted successfully", id)})
}
