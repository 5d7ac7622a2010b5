package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/bundle-chat/internal/common"
)

func (h *Handler) ListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": h.Registry.List()})
}

func (h *Handler) GetAgent(c *gin.Context) {
	name := c.Param("name")
	info, ok := h.Registry.Lookup(name)
	if !ok {
		names := make([]string, 0)
		for _, a := range h.Registry.List() {
			names = append(names, a.Name)
		}
		common.Fail(c, http.StatusNotFound, 40405,
			fmt.Sprintf("Agent '%s' not found. Available agents: [%s]", name, strings.Join(names, ", ")))
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
