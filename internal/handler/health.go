package handler

import (
	"net/http"

	"pawmart_web/internal/config"

	"github.com/gin-gonic/gin"
)

// WorkspaceCounter reports the number of live workspaces.
type WorkspaceCounter interface {
	Count() int
}

// HealthHandler answers the liveness probe.
type HealthHandler struct {
	cfg        *config.Config
	workspaces WorkspaceCounter
}

func NewHealthHandler(cfg *config.Config, workspaces WorkspaceCounter) *HealthHandler {
	return &HealthHandler{cfg: cfg, workspaces: workspaces}
}

// RegisterRoutes mounts GET /health on the root router, outside the
// workspace middleware.
func (h *HealthHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.health)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "UP",
		"message":    "PawMart web is healthy!",
		"workspaces": h.workspaces.Count(),
		"warnings":   len(h.cfg.Warnings),
	})
}
