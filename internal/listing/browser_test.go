package listing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedFetcher answers each category from a fixed table, optionally holding
// a category until its gate is released. It ignores cancellation unless
// honorCancel is set, which models a response that already settled.
type gatedFetcher struct {
	mu          sync.Mutex
	results     map[string][]domain.Listing
	errs        map[string]error
	gates       map[string]chan struct{}
	started     chan string
	honorCancel bool
	calls       []apiclient.ListingQuery
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		results: map[string][]domain.Listing{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		started: make(chan string, 8),
	}
}

func (f *gatedFetcher) ListListings(ctx context.Context, q apiclient.ListingQuery) ([]domain.Listing, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[q.Category]
	f.mu.Unlock()
	f.started <- q.Category

	if gate != nil {
		if f.honorCancel {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			<-gate
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[q.Category]; err != nil {
		return nil, err
	}
	return f.results[q.Category], nil
}

var (
	pets        = []domain.Listing{{ID: "p1", Name: "Rex", Category: domain.CategoryPets, Location: "NY"}}
	accessories = []domain.Listing{{ID: "a1", Name: "Bowl", Category: domain.CategoryAccessories, Location: "LA"}}
)

func TestBrowser_LoadInitializesSelectorFromRoute(t *testing.T) {
	f := newGatedFetcher()
	f.results["Pets"] = pets
	b := NewBrowser(f, zap.NewNop())

	v, err := b.Load(context.Background(), "Pets")
	require.NoError(t, err)
	assert.Equal(t, "Pets", v.Category)
	assert.Equal(t, pets, v.Listings)
	assert.False(t, v.Loading)
	assert.False(t, v.NoResults)
	assert.Equal(t, "Pets", f.calls[0].Category)
}

func TestBrowser_LoadWithoutCategoryUsesAll(t *testing.T) {
	f := newGatedFetcher()
	f.results[domain.AllCategories] = append(append([]domain.Listing{}, pets...), accessories...)
	b := NewBrowser(f, zap.NewNop())

	v, err := b.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.AllCategories, v.Category)
	assert.Len(t, v.Listings, 2)
}

func TestBrowser_StaleResponseDoesNotOverwrite(t *testing.T) {
	f := newGatedFetcher()
	f.results["Pets"] = pets
	f.results["Accessories"] = accessories
	f.gates["Pets"] = make(chan struct{})
	b := NewBrowser(f, zap.NewNop())

	var wg sync.WaitGroup
	var errA error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errA = b.Load(context.Background(), "Pets")
	}()
	<-f.started

	v, err := b.Load(context.Background(), "Accessories")
	<-f.started
	require.NoError(t, err)
	assert.Equal(t, accessories, v.Listings)

	// A settles late with its Pets payload.
	close(f.gates["Pets"])
	wg.Wait()

	assert.ErrorIs(t, errA, ErrSuperseded)
	assert.Equal(t, accessories, b.View().Listings)
	assert.Equal(t, "Accessories", b.View().Category)
}

func TestBrowser_SupersededLoadIsCancelled(t *testing.T) {
	f := newGatedFetcher()
	f.honorCancel = true
	f.results["Accessories"] = accessories
	f.gates["Pets"] = make(chan struct{})
	b := NewBrowser(f, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background(), "Pets")
		done <- err
	}()
	<-f.started

	_, err := b.Load(context.Background(), "Accessories")
	require.NoError(t, err)

	assert.ErrorIs(t, <-done, ErrSuperseded, "cancellation of a superseded load is not a failure")
	assert.Equal(t, accessories, b.View().Listings)
}

func TestBrowser_FailureResetsToEmpty(t *testing.T) {
	f := newGatedFetcher()
	f.results["Pets"] = pets
	b := NewBrowser(f, zap.NewNop())
	_, err := b.Load(context.Background(), "Pets")
	require.NoError(t, err)

	f.errs["Pets"] = errors.New("backend down")
	v, err := b.Load(context.Background(), "Pets")
	require.Error(t, err)
	assert.Empty(t, v.Listings)
	assert.Equal(t, 0, v.Total)
	assert.Empty(t, b.View().Listings)
}

func TestBrowser_FiltersAndReset(t *testing.T) {
	f := newGatedFetcher()
	f.results[domain.AllCategories] = append(append([]domain.Listing{}, pets...), accessories...)
	b := NewBrowser(f, zap.NewNop())
	_, err := b.Load(context.Background(), "")
	require.NoError(t, err)

	v := b.SetTerm("zebra")
	assert.Empty(t, v.Listings)
	assert.True(t, v.NoResults)

	v = b.SetTerm("re")
	assert.Equal(t, pets, v.Listings)

	v = b.SetCategory("Accessories")
	assert.Empty(t, v.Listings)

	v = b.Reset()
	assert.Equal(t, "", v.Term)
	assert.Equal(t, domain.AllCategories, v.Category)
	assert.Len(t, v.Listings, 2)
	assert.False(t, v.NoResults)
}

func TestBrowser_SameRouteKeepsSelector(t *testing.T) {
	f := newGatedFetcher()
	f.results["Pets"] = pets
	b := NewBrowser(f, zap.NewNop())
	_, err := b.Load(context.Background(), "Pets")
	require.NoError(t, err)

	b.SetCategory(domain.AllCategories)
	v, err := b.Load(context.Background(), "Pets")
	require.NoError(t, err)
	assert.Equal(t, domain.AllCategories, v.Category)
}
