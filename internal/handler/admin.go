package handler

import (
	"errors"
	"strings"

	"pawmart_web/internal/common"
	"pawmart_web/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the user role table.
type AdminHandler struct {
	logger *zap.Logger
}

func NewAdminHandler(logger *zap.Logger) *AdminHandler {
	return &AdminHandler{logger: logger.Named("admin_handler")}
}

// RegisterRoutes mounts /admin/users behind the session and admin checks.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, sessionMW, adminMW gin.HandlerFunc) {
	adminGroup := router.Group("/admin", sessionMW, adminMW)
	{
		adminGroup.GET("/users", h.listUsers)
		adminGroup.PATCH("/users/:email/role", h.toggleRole)
	}
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	users, err := ws.Users.Load(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to load users.")
		return
	}
	common.RespondOK(c, "Users retrieved successfully.", users)
}

// toggleRole flips one user between user and admin. The table changes only
// after the backend accepts; toggling one's own row also updates the
// caller's auth state.
func (h *AdminHandler) toggleRole(c *gin.Context) {
	ws, session, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	email := strings.TrimSpace(c.Param("email"))
	row, err := ws.Users.ToggleRole(c.Request.Context(), email)
	if errors.Is(err, user.ErrUnknownUser) {
		fail(c, err, "User not found.")
		return
	}
	if err != nil {
		fail(c, err, "Failed to update role.")
		return
	}
	if strings.EqualFold(row.Email, session.Email) {
		updated := row
		ws.Auth.SetDBUser(&updated)
	}
	common.RespondOK(c, "Role updated successfully.", row)
}
