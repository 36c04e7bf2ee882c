package handler

import (
	"pawmart_web/internal/common"
	"pawmart_web/internal/theme"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ThemeView is the theme store as the page renders it.
type ThemeView struct {
	Theme  theme.Mode `json:"theme"`
	Manual bool       `json:"manual"`
	Root   theme.Root `json:"root"`
}

// SystemThemeRequest reports a change of the browser's colour scheme.
type SystemThemeRequest struct {
	Mode string `json:"mode"`
}

type ThemeHandler struct {
	logger *zap.Logger
}

func NewThemeHandler(logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{logger: logger.Named("theme_handler")}
}

func (h *ThemeHandler) RegisterRoutes(router *gin.RouterGroup) {
	themeGroup := router.Group("/theme")
	{
		themeGroup.GET("", h.getTheme)
		themeGroup.POST("/toggle", h.toggle)
		themeGroup.POST("/system", h.systemChanged)
	}
}

func viewOf(s *theme.Store) ThemeView {
	pref := s.Preference()
	return ThemeView{Theme: pref.Theme, Manual: pref.Manual, Root: s.Root()}
}

func (h *ThemeHandler) getTheme(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	common.RespondOK(c, "Theme retrieved successfully.", viewOf(ws.Theme))
}

// toggle answers with the new theme even when it could not be stored.
func (h *ThemeHandler) toggle(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	if _, err := ws.Theme.Toggle(c.Request.Context()); err != nil {
		h.logger.Warn("Theme toggled but not stored", zap.Error(err))
	}
	common.RespondOK(c, "Theme toggled.", viewOf(ws.Theme))
}

func (h *ThemeHandler) systemChanged(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	var req SystemThemeRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	mode, valid := theme.ParseMode(req.Mode)
	if !valid {
		common.RespondWithError(c, common.FieldError("mode", "Mode must be light or dark."))
		return
	}
	pref, changed, err := ws.Theme.SystemChanged(c.Request.Context(), mode)
	if err != nil {
		h.logger.Warn("System theme applied but not stored", zap.Error(err))
	}
	message := "Theme unchanged."
	switch {
	case changed:
		message = "Theme follows the system."
	case pref.Manual:
		message = "A manual theme is set."
	}
	common.RespondOK(c, message, viewOf(ws.Theme))
}
