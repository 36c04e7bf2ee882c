package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"pawmart_web/internal/common"
	"pawmart_web/internal/config"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/identity"
	"pawmart_web/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityProvider is the sign-in surface the session routes drive.
type IdentityProvider interface {
	Verify(ctx context.Context, idToken string) (*domain.Session, error)
	SignIn(ctx context.Context, req identity.SignInRequest) (*domain.Session, error)
	SignUp(ctx context.Context, req identity.SignUpRequest) (*domain.Session, error)
	GoogleLoginURL(c *gin.Context) (string, error)
	CompleteGoogleSignIn(c *gin.Context, code, state, oauthErr string) (*domain.Session, error)
	UpdateProfile(ctx context.Context, session *domain.Session, upd identity.ProfileUpdate) (*domain.Session, error)
	SignOut(ctx context.Context, session *domain.Session)
}

// SessionRequest carries an ID token from a client-side sign-in or refresh.
type SessionRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// SessionHandler turns sign-in, refresh and sign-out into auth bridge events.
type SessionHandler struct {
	cfg      *config.Config
	identity IdentityProvider
	logger   *zap.Logger
}

func NewSessionHandler(cfg *config.Config, provider IdentityProvider, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{cfg: cfg, identity: provider, logger: logger.Named("session_handler")}
}

// RegisterRoutes mounts /session and /auth. rateLimitMW throttles the
// password endpoints; sessionMW gates the profile update.
func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup, rateLimitMW, sessionMW gin.HandlerFunc) {
	sessionGroup := router.Group("/session")
	{
		sessionGroup.GET("", h.getSession)
		sessionGroup.POST("", h.changeSession)
		sessionGroup.DELETE("", h.signOut)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", rateLimitMW, h.login)
		authGroup.POST("/register", rateLimitMW, h.register)
		authGroup.GET("/google/login", h.googleLogin)
		authGroup.GET("/google/callback", h.googleCallback)
		authGroup.PATCH("/profile", sessionMW, h.updateProfile)
	}
}

func (h *SessionHandler) getSession(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	common.RespondOK(c, "Session retrieved successfully.", ws.Auth.State())
}

func (h *SessionHandler) changeSession(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	var req SessionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	session, err := h.identity.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		// A token that fails verification resolves the client as signed out
		// rather than leaving it pending.
		if errors.Is(err, identity.ErrInvalidToken) || errors.Is(err, identity.ErrTokenRevoked) {
			ws.Auth.OnSessionChange(c.Request.Context(), nil)
		}
		fail(c, err, "Could not verify the session.")
		return
	}
	st := ws.Auth.OnSessionChange(c.Request.Context(), session)
	common.RespondOK(c, "Session updated.", st)
}

func (h *SessionHandler) signOut(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	h.identity.SignOut(c.Request.Context(), ws.Session())
	st := ws.Auth.OnSessionChange(c.Request.Context(), nil)
	common.RespondOK(c, "Signed out.", st)
}

func (h *SessionHandler) login(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	var req identity.SignInRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	session, err := h.identity.SignIn(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Sign-in failed.")
		return
	}
	st := ws.Auth.OnSessionChange(c.Request.Context(), session)
	common.RespondOK(c, "Signed in.", st)
}

func (h *SessionHandler) register(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	var req identity.SignUpRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	session, err := h.identity.SignUp(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Registration failed.")
		return
	}
	st := ws.Auth.OnSessionChange(c.Request.Context(), session)
	common.RespondCreated(c, "Account created.", st)
}

func (h *SessionHandler) googleLogin(c *gin.Context) {
	target, err := h.identity.GoogleLoginURL(c)
	if err != nil {
		fail(c, err, "Google sign-in is not available.")
		return
	}
	c.Redirect(http.StatusFound, target)
}

// googleCallback always ends on the frontend: the home page on success, the
// login page carrying the error message otherwise.
func (h *SessionHandler) googleCallback(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	session, err := h.identity.CompleteGoogleSignIn(c, c.Query("code"), c.Query("state"), c.Query("error"))
	if err != nil {
		apiErr := middleware.ToAPIError(err, "Google sign-in failed.")
		h.logger.Warn("Google sign-in failed", zap.String("code", apiErr.Code), zap.Error(err))
		c.Redirect(http.StatusFound, h.frontendURL(h.cfg.LoginPath, url.Values{"error": {apiErr.Message}}))
		return
	}
	ws.Auth.OnSessionChange(c.Request.Context(), session)
	c.Redirect(http.StatusFound, h.frontendURL("/", nil))
}

func (h *SessionHandler) updateProfile(c *gin.Context) {
	ws, session, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	var req identity.ProfileUpdate
	if !bindJSON(c, h.logger, &req) {
		return
	}
	updated, err := h.identity.UpdateProfile(c.Request.Context(), session, req)
	if err != nil {
		fail(c, err, "Profile update failed.")
		return
	}
	ws.Auth.UpdateProfile(updated.DisplayName, updated.PhotoURL)
	common.RespondOK(c, "Profile updated.", ws.Auth.State())
}

func (h *SessionHandler) frontendURL(path string, query url.Values) string {
	u := strings.TrimRight(h.cfg.FrontendURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

var _ IdentityProvider = (*identity.Service)(nil)
