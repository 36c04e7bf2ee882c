package handler

import (
	"strings"
	"time"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/common"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/listing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// recentLimit is the size of the home page feed.
const recentLimit = 6

// FilterRequest changes the browser's search term and/or category selector.
type FilterRequest struct {
	Term     *string `json:"term"`
	Category *string `json:"category"`
}

// ListingHandler serves the public listing pages and listing creation.
type ListingHandler struct {
	listings ListingReader
	logger   *zap.Logger
	now      func() time.Time
}

func NewListingHandler(listings ListingReader, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: logger.Named("listing_handler"), now: time.Now}
}

func (h *ListingHandler) RegisterRoutes(router *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	listingGroup := router.Group("/listings")
	{
		listingGroup.GET("", h.browse)
		listingGroup.PUT("/filters", h.setFilters)
		listingGroup.POST("/filters/reset", h.resetFilters)
		listingGroup.GET("/recent", h.recent)
		listingGroup.GET("/:id", h.details)
		listingGroup.POST("", sessionMW, h.create)
	}
}

// browse loads the listings of the route category into the caller's
// browser. The q parameter, when present, replaces the search term.
func (h *ListingHandler) browse(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	category, known := listing.ParseCategory(c.Query("category"))
	if !known {
		h.logger.Debug("Unknown category route parameter", zap.String("category", category))
	}
	if q, present := c.GetQuery("q"); present {
		ws.Browser.SetTerm(q)
	}
	view, err := ws.Browser.Load(c.Request.Context(), category)
	if err != nil {
		fail(c, err, "Failed to load listings.")
		return
	}
	common.RespondOK(c, "Listings retrieved successfully.", view)
}

func (h *ListingHandler) setFilters(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	var req FilterRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	view := ws.Browser.View()
	if req.Term != nil {
		view = ws.Browser.SetTerm(*req.Term)
	}
	if req.Category != nil {
		category, _ := listing.ParseCategory(*req.Category)
		view = ws.Browser.SetCategory(category)
	}
	common.RespondOK(c, "Filters updated.", view)
}

func (h *ListingHandler) resetFilters(c *gin.Context) {
	ws, ok := currentWorkspace(c, h.logger)
	if !ok {
		return
	}
	common.RespondOK(c, "Filters reset.", ws.Browser.Reset())
}

func (h *ListingHandler) recent(c *gin.Context) {
	items, err := h.listings.ListListings(c.Request.Context(), apiclient.ListingQuery{Limit: recentLimit})
	if err != nil {
		fail(c, err, "Failed to load the latest listings.")
		return
	}
	common.RespondOK(c, "Recent listings retrieved successfully.", items)
}

func (h *ListingHandler) details(c *gin.Context) {
	id, ok := pathID(c, "id", "Listing id")
	if !ok {
		return
	}
	item, err := h.listings.GetListing(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to load the listing.")
		return
	}
	common.RespondOK(c, "Listing retrieved successfully.", item)
}

// create posts a listing owned by the signed-in user. The owner email always
// comes from the session and the date defaults to today.
func (h *ListingHandler) create(c *gin.Context) {
	ws, session, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	var form listing.Form
	if !bindJSON(c, h.logger, &form) {
		return
	}
	if strings.TrimSpace(form.Date) == "" {
		form.Date = listing.Today(h.now())
	}
	created, err := ws.Collection.Create(c.Request.Context(), session.Email, form)
	if err != nil {
		fail(c, err, "Failed to create listing.")
		return
	}
	common.RespondCreated(c, "Listing created successfully.", created)
}

// CollectionView is the owner's listing page.
type CollectionView struct {
	Listings      []domain.Listing `json:"listings"`
	PendingDelete *domain.Listing  `json:"pendingDelete"`
}

// MyListingHandler serves the owner's listing page and its edit and delete
// workflows.
type MyListingHandler struct {
	logger *zap.Logger
}

func NewMyListingHandler(logger *zap.Logger) *MyListingHandler {
	return &MyListingHandler{logger: logger.Named("my_listing_handler")}
}

// RegisterRoutes mounts /my-listings behind sessionMW.
func (h *MyListingHandler) RegisterRoutes(router *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	group := router.Group("/my-listings", sessionMW)
	{
		group.GET("", h.list)
		group.GET("/:id", h.editForm)
		group.PATCH("/:id", h.edit)
		group.POST("/:id/delete", h.requestDelete)
		group.POST("/delete/confirm", h.confirmDelete)
		group.DELETE("/delete", h.cancelDelete)
	}
}

func collectionView(c *listing.Collection) CollectionView {
	return CollectionView{Listings: c.Items(), PendingDelete: c.PendingDelete()}
}

func (h *MyListingHandler) list(c *gin.Context) {
	ws, session, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	if _, err := ws.Collection.Load(c.Request.Context(), session.Email); err != nil {
		fail(c, err, "Failed to load your listings.")
		return
	}
	common.RespondOK(c, "Your listings retrieved successfully.", collectionView(ws.Collection))
}

func (h *MyListingHandler) editForm(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Listing id")
	if !ok {
		return
	}
	form, err := ws.Collection.EditForm(id)
	if err != nil {
		fail(c, err, "Listing not found in your listings.")
		return
	}
	common.RespondOK(c, "Edit form retrieved successfully.", form)
}

func (h *MyListingHandler) edit(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Listing id")
	if !ok {
		return
	}
	var form listing.Form
	if !bindJSON(c, h.logger, &form) {
		return
	}
	updated, err := ws.Collection.Edit(c.Request.Context(), id, form)
	if err != nil {
		fail(c, err, "Failed to update listing.")
		return
	}
	common.RespondOK(c, "Listing updated successfully.", updated)
}

func (h *MyListingHandler) requestDelete(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Listing id")
	if !ok {
		return
	}
	if _, err := ws.Collection.RequestDelete(id); err != nil {
		fail(c, err, "Listing not found in your listings.")
		return
	}
	common.RespondOK(c, "Please confirm the delete.", collectionView(ws.Collection))
}

func (h *MyListingHandler) confirmDelete(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	if _, err := ws.Collection.ConfirmDelete(c.Request.Context()); err != nil {
		fail(c, err, "Failed to delete listing.")
		return
	}
	common.RespondOK(c, "Listing deleted successfully.", collectionView(ws.Collection))
}

func (h *MyListingHandler) cancelDelete(c *gin.Context) {
	ws, _, ok := currentSession(c, h.logger)
	if !ok {
		return
	}
	ws.Collection.CancelDelete()
	common.RespondOK(c, "Delete cancelled.", collectionView(ws.Collection))
}
