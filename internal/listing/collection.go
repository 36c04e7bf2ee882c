package listing

import (
	"context"
	"errors"
	"sync"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/domain"

	"go.uber.org/zap"
)

var (
	// ErrNotInCollection is returned for an id the owner's list does not hold.
	ErrNotInCollection = errors.New("listing is not in the owner's list")
	// ErrNoPendingDelete is returned when confirming without an open dialog.
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
)

// MutationAPI is the part of the backend the mutation workflows use.
type MutationAPI interface {
	Fetcher
	CreateListing(ctx context.Context, in apiclient.ListingInput) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id string, in apiclient.ListingInput) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
}

// Collection is the owner's in-memory listing array. Between fetches it is
// the source of truth: edits and deletes patch it after the backend
// acknowledges them.
type Collection struct {
	api    MutationAPI
	logger *zap.Logger

	mu            sync.Mutex
	owner         string
	items         []domain.Listing
	pendingDelete *domain.Listing
}

// NewCollection returns an empty collection.
func NewCollection(api MutationAPI, logger *zap.Logger) *Collection {
	return &Collection{api: api, logger: logger.Named("listing_collection")}
}

// Load replaces the list with the owner's listings. On failure the list is
// emptied.
func (c *Collection) Load(ctx context.Context, owner string) ([]domain.Listing, error) {
	items, err := c.api.ListListings(ctx, apiclient.ListingQuery{Email: owner})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = owner
	c.pendingDelete = nil
	if err != nil {
		c.items = nil
		return []domain.Listing{}, err
	}
	c.items = items
	return c.copyLocked(), nil
}

// Items returns a copy of the list.
func (c *Collection) Items() []domain.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

func (c *Collection) copyLocked() []domain.Listing {
	out := make([]domain.Listing, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection) indexLocked(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Create validates and posts a new listing owned by owner. The list is not
// patched: a successful create sends the user to the owner list, which
// reloads.
func (c *Collection) Create(ctx context.Context, owner string, form Form) (*domain.Listing, error) {
	form.Email = owner
	in := form.Input()
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}
	created, err := c.api.CreateListing(ctx, in)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Listing created", zap.String("id", created.ID), zap.String("owner", owner))
	return created, nil
}

// EditForm returns the pre-filled edit form for id.
func (c *Collection) EditForm(id string) (Form, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return Form{}, ErrNotInCollection
	}
	return FormFromListing(c.items[i]), nil
}

// Edit validates and patches listing id, then merges the result into the
// list at the same position. When the backend answers without a document the
// submitted fields are merged instead.
func (c *Collection) Edit(ctx context.Context, id string, form Form) (domain.Listing, error) {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return domain.Listing{}, ErrNotInCollection
	}
	current := c.items[i]
	c.mu.Unlock()

	form.Email = current.Email
	in := form.Input()
	if err := ValidateEdit(in); err != nil {
		return domain.Listing{}, err
	}

	updated, err := c.api.UpdateListing(ctx, id, in)
	if err != nil {
		return domain.Listing{}, err
	}
	merged := apiclient.ApplyInput(current, in)
	if updated != nil {
		merged = *updated
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The list may have been reloaded meanwhile; patch by key, not index.
	if j := c.indexLocked(id); j >= 0 {
		c.items[j] = merged
	}
	return merged, nil
}

// RequestDelete opens the confirmation dialog for id.
func (c *Collection) RequestDelete(id string) (domain.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked(id)
	if i < 0 {
		return domain.Listing{}, ErrNotInCollection
	}
	target := c.items[i]
	c.pendingDelete = &target
	return target, nil
}

// PendingDelete returns the listing awaiting confirmation, if any.
func (c *Collection) PendingDelete() *domain.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		return nil
	}
	p := *c.pendingDelete
	return &p
}

// CancelDelete closes the confirmation dialog.
func (c *Collection) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// ConfirmDelete deletes the pending listing. On success it is removed from
// the list by key; on failure the list and the dialog are left as they were.
func (c *Collection) ConfirmDelete(ctx context.Context) (domain.Listing, error) {
	c.mu.Lock()
	if c.pendingDelete == nil {
		c.mu.Unlock()
		return domain.Listing{}, ErrNoPendingDelete
	}
	target := *c.pendingDelete
	c.mu.Unlock()

	if err := c.api.DeleteListing(ctx, target.ID); err != nil {
		return target, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(target.ID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.pendingDelete = nil
	c.logger.Info("Listing deleted", zap.String("id", target.ID))
	return target, nil
}
