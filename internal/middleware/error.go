// File: internal/middleware/error.go
package middleware

import (
	"errors"
	"net/http"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/common"
	"pawmart_web/internal/identity"
	"pawmart_web/internal/listing"
	"pawmart_web/internal/order"
	"pawmart_web/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrSuperseded is the answer to a listing load replaced by a newer one.
var ErrSuperseded = common.NewAPIError(http.StatusConflict, "SUPERSEDED", "A newer request replaced this one.")

const defaultFallback = "Something went wrong. Please try again."

// ToAPIError translates an error from any workflow into the HTTP error sent
// to the browser. fallback is the operation's generic message for backend
// failures that carry none.
func ToAPIError(err error, fallback string) *common.APIError {
	if fallback == "" {
		fallback = defaultFallback
	}
	if apiErr, ok := common.IsAPIError(err); ok {
		return apiErr
	}
	var idErr *identity.Error
	switch {
	case errors.Is(err, listing.ErrSuperseded):
		return ErrSuperseded
	case errors.Is(err, listing.ErrNotInCollection), errors.Is(err, user.ErrUnknownUser):
		return common.ErrNotFound.WithMessage(fallback)
	case errors.Is(err, listing.ErrNoPendingDelete):
		return common.ErrConflict.WithMessage("No delete is awaiting confirmation.")
	case errors.Is(err, order.ErrModalClosed):
		return common.ErrConflict.WithMessage("The order form is not open.")
	case errors.Is(err, order.ErrSubmitting):
		return common.ErrConflict.WithMessage("The order is already being submitted.")
	case errors.As(err, &idErr),
		errors.Is(err, identity.ErrUnavailable),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrTokenRevoked),
		errors.Is(err, identity.ErrStateMismatch):
		return identity.ToAPIError(err)
	}
	return apiclient.ToAPIError(err, fallback)
}

// ErrorHandler creates a Gin middleware for centralized error handling.
// Errors attached with c.Error are answered when the handler wrote nothing;
// a string Meta is used as the fallback message.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginErr := c.Errors.Last()
			fallback, _ := ginErr.Meta.(string)
			apiErr := ToAPIError(ginErr.Err, fallback)
			if apiErr.StatusCode >= http.StatusInternalServerError {
				logger.Error("Request failed",
					zap.Error(ginErr.Err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(RequestIDContextKey)),
				)
			}
			c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
			return
		}

		if c.Writer.Status() == http.StatusNotFound && !c.Writer.Written() {
			notFoundErr := common.ErrNotFound.WithDetails("The requested endpoint does not exist.")
			c.AbortWithStatusJSON(notFoundErr.StatusCode, notFoundErr)
			return
		}
		if c.Writer.Status() == http.StatusMethodNotAllowed && !c.Writer.Written() {
			methodNotAllowedErr := common.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL.")
			c.AbortWithStatusJSON(methodNotAllowedErr.StatusCode, methodNotAllowedErr)
			return
		}
	}
}
