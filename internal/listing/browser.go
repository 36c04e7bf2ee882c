package listing

import (
	"context"
	"errors"
	"sync"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/domain"

	"go.uber.org/zap"
)

// ErrSuperseded is returned by Browser.Load when a newer load replaced it
// before it finished. It is not a failure and is never shown to the user.
var ErrSuperseded = errors.New("listing load superseded by a newer request")

// Fetcher reads listings from the backend.
type Fetcher interface {
	ListListings(ctx context.Context, q apiclient.ListingQuery) ([]domain.Listing, error)
}

// View is what the browser page renders.
type View struct {
	Listings      []domain.Listing `json:"listings"`
	Total         int              `json:"total"`
	Term          string           `json:"term"`
	Category      string           `json:"category"`
	RouteCategory string           `json:"routeCategory"`
	Loading       bool             `json:"loading"`
	NoResults     bool             `json:"noResults"`
	Categories    []string         `json:"categories"`
}

// Browser reconciles the raw listing set, the search term and the category
// selector of one client into a displayed set.
type Browser struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu            sync.Mutex
	raw           []domain.Listing
	term          string
	selected      string
	routeCategory string
	loaded        bool
	loading       bool
	gen           uint64
	cancel        context.CancelFunc
}

// NewBrowser returns an empty browser with the selector on "All".
func NewBrowser(fetcher Fetcher, logger *zap.Logger) *Browser {
	return &Browser{
		fetcher:  fetcher,
		logger:   logger.Named("listing_browser"),
		selected: domain.AllCategories,
	}
}

// Load fetches the listings for routeCategory (a category name, or "" / "All"
// for everything). A load in flight is cancelled first; if this load is in
// turn replaced before it settles it returns ErrSuperseded and leaves the
// browser untouched. On failure the raw set is emptied.
func (b *Browser) Load(ctx context.Context, routeCategory string) (View, error) {
	if routeCategory == "" {
		routeCategory = domain.AllCategories
	}

	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.gen++
	gen := b.gen
	loadCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	if !b.loaded || routeCategory != b.routeCategory {
		b.selected = routeCategory
	}
	b.routeCategory = routeCategory
	b.loading = true
	b.mu.Unlock()

	items, err := b.fetcher.ListListings(loadCtx, apiclient.ListingQuery{Category: routeCategory})

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		cancel()
		b.logger.Debug("Dropping superseded listing load", zap.String("category", routeCategory))
		return b.viewLocked(), ErrSuperseded
	}
	cancel()
	b.cancel = nil
	b.loading = false
	b.loaded = true

	if err != nil {
		b.raw = nil
		b.logger.Warn("Listing load failed", zap.String("category", routeCategory), zap.Error(err))
		return b.viewLocked(), err
	}
	b.raw = items
	return b.viewLocked(), nil
}

// SetTerm updates the search term.
func (b *Browser) SetTerm(term string) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.term = term
	return b.viewLocked()
}

// SetCategory updates the category selector.
func (b *Browser) SetCategory(category string) View {
	b.mu.Lock()
	defer b.mu.Unlock()
	if category == "" {
		category = domain.AllCategories
	}
	b.selected = category
	return b.viewLocked()
}

// Reset is the one-click "clear filters" action.
func (b *Browser) Reset() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.term = ""
	b.selected = domain.AllCategories
	return b.viewLocked()
}

// View returns the current view.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

// Close cancels a load in flight.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *Browser) viewLocked() View {
	displayed := Display(b.raw, b.term, b.selected)
	categories := make([]string, 0, len(domain.Categories)+1)
	categories = append(categories, domain.AllCategories)
	for _, c := range domain.Categories {
		categories = append(categories, string(c))
	}
	return View{
		Listings:      displayed,
		Total:         len(b.raw),
		Term:          b.term,
		Category:      b.selected,
		RouteCategory: b.routeCategory,
		Loading:       b.loading,
		NoResults:     !b.loading && b.loaded && len(displayed) == 0,
		Categories:    categories,
	}
}
