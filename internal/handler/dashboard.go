package handler

import (
	"context"

	"pawmart_web/internal/common"
	"pawmart_web/internal/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardBuilder computes the signed-in user's dashboard.
type DashboardBuilder interface {
	Build(ctx context.Context, email string) (*dashboard.Summary, error)
}

type DashboardHandler struct {
	dashboards DashboardBuilder
	logger     *zap.Logger
}

func NewDashboardHandler(dashboards DashboardBuilder, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, logger: logger.Named("dashboard_handler")}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	router.GET("/dashboard", sessionMW, h.getDashboard)
}

func (h *DashboardHandler) getDashboard(c *gin.Context) {
	_, session, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	summary, err := h.dashboards.Build(c.Request.Context(), session.Email)
	if err != nil {
		fail(c, err, "Failed to load the dashboard.")
		return
	}
	common.RespondOK(c, "Dashboard retrieved successfully.", summary)
}
