package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/bundle-chat/internal/common"
	"github.com/suPer8Hu/bundle-chat/internal/httpapi/handlers"
	"github.com/suPer8Hu/bundle-chat/internal/httpapi/middleware"
	"go.uber.org/zap"
)

// NewRouter wires the chat API under /api/v1. limiter may be nil.
func NewRouter(h *handlers.Handler, limiter middleware.Limiter, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	v1 := r.Group("/api/v1")
	v1.POST("/chat", middleware.RateLimit(limiter, log), h.SendChatMessage)
	v1.GET("/chat/:id", h.GetChat)
	v1.DELETE("/chat/:id", h.DeleteChat)
	v1.POST("/chat/:id/upload", middleware.RateLimit(limiter, log), h.UploadDocuments)

	v1.GET("/agents", h.ListAgents)
	v1.GET("/agents/:name", h.GetAgent)
	return r
}
