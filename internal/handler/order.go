package handler

import (
	"pawmart_web/internal/common"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OpenOrderRequest names the listing the order form is opened for.
type OpenOrderRequest struct {
	ListingID string `json:"listingId" validate:"required,objectid"`
}

// SubmitResult is the answer to a placed order.
type SubmitResult struct {
	Order *domain.Order `json:"order"`
	Modal order.View    `json:"modal"`
}

// OrderHandler serves the order modal and the buyer's order history.
type OrderHandler struct {
	listings ListingReader
	logger   *zap.Logger
}

func NewOrderHandler(listings ListingReader, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{listings: listings, logger: logger.Named("order_handler")}
}

// RegisterRoutes mounts /order-modal and /orders behind sessionMW.
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	modalGroup := router.Group("/order-modal", sessionMW)
	{
		modalGroup.GET("", h.getModal)
		modalGroup.POST("", h.openModal)
		modalGroup.PATCH("", h.updateModal)
		modalGroup.POST("/submit", h.submit)
		modalGroup.DELETE("", h.closeModal)
	}

	orderGroup := router.Group("/orders", sessionMW)
	{
		orderGroup.GET("", h.listOrders)
		orderGroup.DELETE("/:id", h.deleteOrder)
	}
}

func (h *OrderHandler) getModal(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	common.RespondOK(c, "Order form retrieved successfully.", ws.Modal.View())
}

func (h *OrderHandler) openModal(c *gin.Context) {
	ws, session, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	var req OpenOrderRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	target, err := h.listings.GetListing(c.Request.Context(), req.ListingID)
	if err != nil {
		fail(c, err, "Failed to load the listing.")
		return
	}
	common.RespondOK(c, "Order form opened.", ws.Modal.Open(*target, session))
}

func (h *OrderHandler) updateModal(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	var patch order.FormPatch
	if !bindJSON(c, h.logger, &patch) {
		return
	}
	view, err := ws.Modal.Update(patch)
	if err != nil {
		fail(c, err, "")
		return
	}
	common.RespondOK(c, "Order form updated.", view)
}

func (h *OrderHandler) submit(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	placed, view, err := ws.Modal.Submit(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to place order. Please try again.")
		return
	}
	common.RespondCreated(c, "Order placed successfully.", SubmitResult{Order: placed, Modal: view})
}

func (h *OrderHandler) closeModal(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	common.RespondOK(c, "Order form closed.", ws.Modal.Close())
}

func (h *OrderHandler) listOrders(c *gin.Context) {
	ws, session, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	orders, err := ws.Orders.Load(c.Request.Context(), session.Email)
	if err != nil {
		fail(c, err, "Failed to load your orders.")
		return
	}
	common.RespondOK(c, "Your orders retrieved successfully.", orders)
}

// deleteOrder only accepts orders from the caller's loaded history.
func (h *OrderHandler) deleteOrder(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Order id")
	if !ok {
		return
	}
	if !ws.Orders.Owns(id) {
		common.RespondWithError(c, common.ErrNotFound.WithMessage("Order not found in your orders."))
		return
	}
	if err := ws.Orders.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to delete order.")
		return
	}
	common.RespondOK(c, "Order deleted successfully.", ws.Orders.Orders())
}
