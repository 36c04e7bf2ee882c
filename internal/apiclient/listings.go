// File: internal/apiclient/listings.go
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"pawmart_web/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ListingQuery filters GET /listings. Zero values are omitted.
type ListingQuery struct {
	Email    string
	Category string
	Limit    int
}

func (q ListingQuery) values() url.Values {
	v := url.Values{}
	if q.Email != "" {
		v.Set("email", q.Email)
	}
	if q.Category != "" && q.Category != domain.AllCategories {
		v.Set("category", q.Category)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ListingInput is the writable part of a listing, sent on create and update.
type ListingInput struct {
	Name        string          `json:"name"`
	Category    domain.Category `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Date        string          `json:"date"`
	Email       string          `json:"email"`
}

// ValidID reports whether id looks like a backend document id.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// ListListings returns the listings matching q in backend order. Records
// without an _id are dropped.
func (c *Client) ListListings(ctx context.Context, q ListingQuery) ([]domain.Listing, error) {
	var items []domain.Listing
	if err := c.do(ctx, http.MethodGet, "/listings", q.values(), nil, &items); err != nil {
		return nil, err
	}
	out := items[:0]
	for _, l := range items {
		if l.ID == "" {
			c.logger.Warn("Dropping listing without _id", zap.String("name", l.Name))
			continue
		}
		l.Normalize()
		out = append(out, l)
	}
	return out, nil
}

// GetListing fetches one listing.
func (c *Client) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, nil, &l); err != nil {
		return nil, err
	}
	if l.ID == "" {
		return nil, fmt.Errorf("%w: listing %s has no _id", ErrMalformedResponse, id)
	}
	l.Normalize()
	return &l, nil
}

// CreateListing posts a new listing. The backend answers either with the
// stored document or with an insert acknowledgement; both are folded into the
// returned listing.
func (c *Client) CreateListing(ctx context.Context, in ListingInput) (*domain.Listing, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/listings", nil, in, &raw); err != nil {
		return nil, err
	}
	created := listingFromInput("", in)
	if doc, ok := decodeListingDocument(raw); ok {
		return doc, nil
	}
	var ack struct {
		InsertedID string `json:"insertedId"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &ack)
	}
	created.ID = ack.InsertedID
	return &created, nil
}

// UpdateListing patches a listing. It returns the backend's document when the
// response carries one, and nil when the backend only acknowledged the write.
func (c *Client) UpdateListing(ctx context.Context, id string, in ListingInput) (*domain.Listing, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, "/listings/"+url.PathEscape(id), nil, in, &raw); err != nil {
		return nil, err
	}
	if doc, ok := decodeListingDocument(raw); ok {
		return doc, nil
	}
	return nil, nil
}

// DeleteListing removes a listing.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/listings/"+url.PathEscape(id), nil, nil, nil)
}

func decodeListingDocument(raw json.RawMessage) (*domain.Listing, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var l domain.Listing
	if err := json.Unmarshal(raw, &l); err != nil || l.ID == "" || l.Name == "" {
		return nil, false
	}
	l.Normalize()
	return &l, true
}

func listingFromInput(id string, in ListingInput) domain.Listing {
	return domain.Listing{
		ID:          id,
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Location:    in.Location,
		Description: in.Description,
		Image:       in.Image,
		Date:        in.Date,
		Email:       in.Email,
	}
}

// ApplyInput overwrites the writable fields of l with in.
func ApplyInput(l domain.Listing, in ListingInput) domain.Listing {
	patched := listingFromInput(l.ID, in)
	patched.CreatedAt = l.CreatedAt
	return patched
}
