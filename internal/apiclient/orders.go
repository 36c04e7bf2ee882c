// File: internal/apiclient/orders.go
package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"pawmart_web/internal/domain"

	"github.com/shopspring/decimal"
)

// OrderInput is the body of POST /orders.
type OrderInput struct {
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	BuyerName       string          `json:"buyerName"`
	Email           string          `json:"email"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	Date            string          `json:"date"`
	AdditionalNotes string          `json:"additionalNotes"`
}

// ListOrders returns the orders placed by email.
func (c *Client) ListOrders(ctx context.Context, email string) ([]domain.Order, error) {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &orders); err != nil {
		return nil, err
	}
	out := orders[:0]
	for _, o := range orders {
		if o.ID == "" {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/orders", nil, in, &raw); err != nil {
		return nil, err
	}
	order := domain.Order{
		ProductID:       in.ProductID,
		ProductName:     in.ProductName,
		BuyerName:       in.BuyerName,
		Email:           in.Email,
		Quantity:        in.Quantity,
		Price:           in.Price,
		Address:         in.Address,
		Phone:           in.Phone,
		Date:            in.Date,
		AdditionalNotes: in.AdditionalNotes,
	}
	if len(raw) > 0 {
		var resp struct {
			ID         string `json:"_id"`
			InsertedID string `json:"insertedId"`
		}
		if json.Unmarshal(raw, &resp) == nil {
			order.ID = resp.ID
			if order.ID == "" {
				order.ID = resp.InsertedID
			}
		}
	}
	return &order, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(id), nil, nil, nil)
}
