package order

import (
	"context"
	"sync"

	"pawmart_web/internal/domain"

	"go.uber.org/zap"
)

// HistoryAPI reads and deletes a buyer's orders.
type HistoryAPI interface {
	ListOrders(ctx context.Context, email string) ([]domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// History is the buyer's order list. Like the listing collection it is only
// refreshed by an explicit Load.
type History struct {
	api    HistoryAPI
	logger *zap.Logger

	mu     sync.Mutex
	email  string
	orders []domain.Order
}

// NewHistory returns an empty history.
func NewHistory(api HistoryAPI, logger *zap.Logger) *History {
	return &History{api: api, logger: logger.Named("order_history")}
}

// Load fetches the orders placed by email. On failure the list is emptied.
func (h *History) Load(ctx context.Context, email string) ([]domain.Order, error) {
	orders, err := h.api.ListOrders(ctx, email)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.email = email
	if err != nil {
		h.orders = nil
		return []domain.Order{}, err
	}
	h.orders = orders
	return h.copyLocked(), nil
}

// Orders returns a copy of the list.
func (h *History) Orders() []domain.Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copyLocked()
}

// Add records an order placed through the modal.
func (h *History) Add(o domain.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.email != "" && o.Email != h.email {
		return
	}
	h.orders = append(h.orders, o)
}

// Delete removes order id. The list is only patched after the backend
// acknowledges.
func (h *History) Delete(ctx context.Context, id string) error {
	if err := h.api.DeleteOrder(ctx, id); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.orders {
		if h.orders[i].ID == id {
			h.orders = append(h.orders[:i], h.orders[i+1:]...)
			break
		}
	}
	h.logger.Info("Order deleted", zap.String("id", id))
	return nil
}

func (h *History) copyLocked() []domain.Order {
	out := make([]domain.Order, len(h.orders))
	copy(out, h.orders)
	return out
}

// Owns reports whether id is one of the loaded orders.
func (h *History) Owns(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.orders {
		if o.ID == id {
			return true
		}
	}
	return false
}
