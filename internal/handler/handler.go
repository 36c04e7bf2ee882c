// Package handler exposes the per-client workspace components over HTTP.
// Every route runs behind middleware.Workspace, so handlers find the caller's
// workspace on the gin context.
package handler

import (
	"context"
	"errors"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/common"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/middleware"
	"pawmart_web/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ListingReader is the read side of the backend used outside a workspace
// component: listing details, the home page feed and the order target.
type ListingReader interface {
	ListListings(ctx context.Context, q apiclient.ListingQuery) ([]domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
}

// currentWorkspace returns the caller's workspace or answers 500.
func currentWorkspace(c *gin.Context, logger *zap.Logger) (*workspace.Workspace, bool) {
	ws := middleware.GetWorkspace(c)
	if ws == nil {
		logger.Error("Route registered without the Workspace middleware", zap.String("path", c.Request.URL.Path))
		common.RespondWithError(c, common.ErrInternalServer)
		return nil, false
	}
	return ws, true
}

// currentSession returns the workspace and its session. Session routes sit
// behind RequireSession; a nil session here means the state changed between
// the guard and the handler.
func currentSession(c *gin.Context, logger *zap.Logger) (*workspace.Workspace, *domain.Session, bool) {
	ws, ok := currentWorkspace(c, logger)
	if !ok {
		return nil, nil, false
	}
	session := ws.Session()
	if session == nil {
		common.RespondWithError(c, common.ErrLoginRequired)
		return nil, nil, false
	}
	return ws, session, true
}

// bindJSON decodes the request body into dst, answering 400/422 on failure.
func bindJSON(c *gin.Context, logger *zap.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Warn("Invalid request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}

// fail hands err to the ErrorHandler middleware with the operation's
// fallback message.
func fail(c *gin.Context, err error, fallback string) {
	_ = c.Error(err).SetMeta(fallback)
	c.Abort()
}

// pathID reads an _id path parameter. Malformed ids are answered as
// validation errors without a backend call.
func pathID(c *gin.Context, param, label string) (string, bool) {
	id := c.Param(param)
	if !apiclient.ValidID(id) {
		common.RespondWithError(c, common.FieldError(param, label+" is not a valid identifier."))
		return "", false
	}
	return id, true
}
