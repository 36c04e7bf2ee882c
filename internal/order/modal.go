// Package order holds the order modal and the buyer's order history.
package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/common"
	"pawmart_web/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrModalClosed is returned by form operations while no listing is open.
	ErrModalClosed = errors.New("order modal is not open")
	// ErrSubmitting is returned while a submission is in flight.
	ErrSubmitting = errors.New("order is already being submitted")
)

// Phase is the modal's state.
type Phase string

const (
	PhaseClosed     Phase = "closed"
	PhaseOpen       Phase = "open"
	PhaseSubmitting Phase = "submitting"
)

// Creator places orders.
type Creator interface {
	CreateOrder(ctx context.Context, in apiclient.OrderInput) (*domain.Order, error)
}

// Form is the order form. Email comes from the session and is never edited.
type Form struct {
	BuyerName       string `json:"buyerName" validate:"required"`
	Email           string `json:"email"`
	Quantity        int    `json:"quantity" validate:"gte=1"`
	Address         string `json:"address" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	AdditionalNotes string `json:"additionalNotes"`
}

// FormPatch carries the fields a buyer may change. Nil fields are left alone.
type FormPatch struct {
	BuyerName       *string `json:"buyerName"`
	Quantity        *int    `json:"quantity"`
	Address         *string `json:"address"`
	Phone           *string `json:"phone"`
	AdditionalNotes *string `json:"additionalNotes"`
}

// View is the modal as rendered.
type View struct {
	Phase          Phase           `json:"phase"`
	Listing        *domain.Listing `json:"listing,omitempty"`
	Form           Form            `json:"form"`
	QuantityLocked bool            `json:"quantityLocked"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Error          string          `json:"error,omitempty"`
}

// Modal is the order form bound to one target listing.
type Modal struct {
	api       Creator
	logger    *zap.Logger
	now       func() time.Time
	onSuccess func(domain.Order)

	mu      sync.Mutex
	phase   Phase
	listing *domain.Listing
	form    Form
	errMsg  string
	// opened counts Open calls so a submission that outlives its modal
	// instance does not write into the next one.
	opened  uint64
}

// NewModal returns a closed modal. onSuccess, if set, is called with every
// placed order.
func NewModal(api Creator, logger *zap.Logger, onSuccess func(domain.Order)) *Modal {
	return &Modal{
		api:       api,
		logger:    logger.Named("order_modal"),
		now:       time.Now,
		onSuccess: onSuccess,
		phase:     PhaseClosed,
	}
}

// Open shows the modal for listing. The form is prefilled from session;
// opening a different listing than last time starts from a fresh form.
func (m *Modal) Open(listing domain.Listing, session *domain.Session) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listing == nil || m.listing.ID != listing.ID || m.form == (Form{}) {
		m.form = Form{Quantity: 1}
	}
	if session != nil {
		m.form.Email = session.Email
		if strings.TrimSpace(m.form.BuyerName) == "" {
			m.form.BuyerName = session.DisplayName
		}
	}
	if listing.Category == domain.CategoryPets || m.form.Quantity < 1 {
		m.form.Quantity = 1
	}
	l := listing
	m.listing = &l
	m.phase = PhaseOpen
	m.errMsg = ""
	m.opened++
	return m.viewLocked()
}

// Update applies patch to the form.
func (m *Modal) Update(patch FormPatch) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhaseClosed:
		return m.viewLocked(), ErrModalClosed
	case PhaseSubmitting:
		return m.viewLocked(), ErrSubmitting
	}
	if patch.BuyerName != nil {
		m.form.BuyerName = *patch.BuyerName
	}
	if patch.Quantity != nil && m.listing.Category != domain.CategoryPets {
		m.form.Quantity = *patch.Quantity
	}
	if patch.Address != nil {
		m.form.Address = *patch.Address
	}
	if patch.Phone != nil {
		m.form.Phone = *patch.Phone
	}
	if patch.AdditionalNotes != nil {
		m.form.AdditionalNotes = *patch.AdditionalNotes
	}
	return m.viewLocked(), nil
}

// Submit validates the form and places the order. Validation failures make no
// backend call. On success the modal closes and onSuccess runs; on failure the
// modal stays open with the backend's message.
func (m *Modal) Submit(ctx context.Context) (*domain.Order, View, error) {
	m.mu.Lock()
	switch m.phase {
	case PhaseClosed:
		v := m.viewLocked()
		m.mu.Unlock()
		return nil, v, ErrModalClosed
	case PhaseSubmitting:
		v := m.viewLocked()
		m.mu.Unlock()
		return nil, v, ErrSubmitting
	}

	form := trimmed(m.form)
	if err := validate(form); err != nil {
		m.errMsg = err.Error()
		if apiErr, ok := common.IsAPIError(err); ok {
			m.errMsg = apiErr.Message
		}
		v := m.viewLocked()
		m.mu.Unlock()
		return nil, v, err
	}

	in := buildInput(*m.listing, form, m.now())
	m.form = form
	m.phase = PhaseSubmitting
	m.errMsg = ""
	opened := m.opened
	m.mu.Unlock()

	placed, err := m.api.CreateOrder(ctx, in)

	m.mu.Lock()
	current := m.opened == opened
	if err != nil {
		if current {
			m.phase = PhaseOpen
			m.errMsg = apiclient.UserMessage(err, "Failed to place order. Please try again.")
		}
		v := m.viewLocked()
		m.mu.Unlock()
		m.logger.Warn("Order submission failed", zap.String("productId", in.ProductID), zap.Error(err))
		return nil, v, err
	}
	if current {
		m.phase = PhaseClosed
		m.form = Form{}
		m.errMsg = ""
	}
	v := m.viewLocked()
	m.mu.Unlock()

	m.logger.Info("Order placed", zap.String("orderId", placed.ID), zap.String("productId", placed.ProductID))
	if m.onSuccess != nil {
		m.onSuccess(*placed)
	}
	return placed, v, nil
}

// Close hides the modal. The form is kept for the same listing.
func (m *Modal) Close() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = PhaseClosed
	m.errMsg = ""
	m.opened++
	return m.viewLocked()
}

// View returns the modal as rendered.
func (m *Modal) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Modal) viewLocked() View {
	v := View{Phase: m.phase, Form: m.form, Error: m.errMsg, TotalPrice: decimal.Zero}
	if m.listing != nil && m.phase != PhaseClosed {
		l := *m.listing
		v.Listing = &l
		v.QuantityLocked = l.Category == domain.CategoryPets
		v.TotalPrice = Total(l.Price, m.form.Quantity)
	}
	return v
}

// Total is the order price for quantity units.
func Total(unit decimal.Decimal, quantity int) decimal.Decimal {
	if quantity < 1 {
		quantity = 1
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

func trimmed(f Form) Form {
	f.BuyerName = strings.TrimSpace(f.BuyerName)
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)
	f.AdditionalNotes = strings.TrimSpace(f.AdditionalNotes)
	return f
}

func validate(f Form) error {
	return common.ValidateStruct(f)
}

func buildInput(l domain.Listing, f Form, now time.Time) apiclient.OrderInput {
	return apiclient.OrderInput{
		ProductID:       l.ID,
		ProductName:     l.Name,
		BuyerName:       f.BuyerName,
		Email:           f.Email,
		Quantity:        f.Quantity,
		Price:           Total(l.Price, f.Quantity),
		Address:         f.Address,
		Phone:           f.Phone,
		Date:            now.Format("2006-01-02"),
		AdditionalNotes: f.AdditionalNotes,
	}
}
