package jobs

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/config"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/platform/elasticsearch"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockListingSource struct {
	mock.Mock
}

func (m *MockListingSource) ListListings(ctx context.Context, q apiclient.ListingQuery) ([]domain.Listing, error) {
	args := m.Called(ctx, q)
	if l := args.Get(0); l != nil {
		return l.([]domain.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeES answers the handful of endpoints the sync job touches.
type fakeES struct {
	mu          sync.Mutex
	indexExists bool
	created     bool
	bulkCalls   int
	bulkIDs     []string
	failID      string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"8.18.0"},"tagline":"You Know, for Search"}`))
	case r.URL.Path == "/listings" && r.Method == http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.URL.Path == "/listings" && r.Method == http.MethodPut:
		f.created = true
		f.indexExists = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.URL.Path == "/_bulk":
		f.bulkCalls++
		var items []string
		scanner := bufio.NewScanner(r.Body)
		action := true
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if action {
				start := strings.Index(line, `"_id" : "`) + len(`"_id" : "`)
				id := line[start : start+strings.Index(line[start:], `"`)]
				f.bulkIDs = append(f.bulkIDs, id)
				if id == f.failID {
					items = append(items, `{"index":{"_id":"`+id+`","status":400,"error":{"type":"mapper_parsing_exception"}}}`)
				} else {
					items = append(items, `{"index":{"_id":"`+id+`","status":201}}`)
				}
			}
			action = !action
		}
		_, _ = w.Write([]byte(`{"errors":false,"items":[` + strings.Join(items, ",") + `]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestJob(t *testing.T, source ListingSource, es *fakeES) *ListingSyncJob {
	t.Helper()
	server := httptest.NewServer(es)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(&config.Config{ElasticsearchURL: server.URL}, zap.NewNop())
	require.NoError(t, err)
	return NewListingSyncJob(source, client, zap.NewNop(), &config.Config{ListingSyncJobSchedule: "@every 15m"})
}

func sampleListings(n int) []domain.Listing {
	out := make([]domain.Listing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Listing{
			ID:       "65f0c0ffee0000000000000" + string(rune('a'+i)),
			Name:     "Listing",
			Category: domain.CategoryPetFood,
			Price:    decimal.NewFromInt(12),
			Quantity: 1,
			Email:    "ann@example.com",
		})
	}
	return out
}

func TestRunOnce_CreatesIndexAndBatches(t *testing.T) {
	source := new(MockListingSource)
	source.On("ListListings", mock.Anything, apiclient.ListingQuery{}).Return(sampleListings(5), nil)
	es := &fakeES{}
	job := newTestJob(t, source, es)

	result, err := job.RunOnce(context.Background(), SyncOptions{BatchSize: 2})
	require.NoError(t, err)

	assert.True(t, es.created)
	assert.Equal(t, 3, es.bulkCalls)
	assert.Len(t, es.bulkIDs, 5)
	assert.Equal(t, SyncResult{Fetched: 5, Indexed: 5, Batches: 3}, result)
	source.AssertExpectations(t)
}

func TestRunOnce_ExistingIndexIsKept(t *testing.T) {
	source := new(MockListingSource)
	source.On("ListListings", mock.Anything, mock.Anything).Return(sampleListings(1), nil)
	es := &fakeES{indexExists: true}
	job := newTestJob(t, source, es)

	_, err := job.RunOnce(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.False(t, es.created)
	assert.Equal(t, 1, es.bulkCalls)
}

func TestRunOnce_CountsFailuresAndSkips(t *testing.T) {
	listings := sampleListings(3)
	listings = append(listings, domain.Listing{Name: "no id"})
	source := new(MockListingSource)
	source.On("ListListings", mock.Anything, mock.Anything).Return(listings, nil)
	es := &fakeES{failID: listings[1].ID}
	job := newTestJob(t, source, es)

	result, err := job.RunOnce(context.Background(), SyncOptions{})
	require.Error(t, err)
	assert.Equal(t, "2 listings failed to sync", err.Error())
	assert.Equal(t, 4, result.Fetched)
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 2, result.Failed)
}

func TestRunOnce_FetchFailure(t *testing.T) {
	source := new(MockListingSource)
	source.On("ListListings", mock.Anything, mock.Anything).Return(nil, errors.New("backend down"))
	es := &fakeES{}
	job := newTestJob(t, source, es)

	_, err := job.RunOnce(context.Background(), SyncOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	assert.Zero(t, es.bulkCalls)
}

func TestRunOnce_DisabledMirror(t *testing.T) {
	source := new(MockListingSource)
	job := NewListingSyncJob(source, nil, zap.NewNop(), &config.Config{})

	_, err := job.RunOnce(context.Background(), SyncOptions{})
	assert.ErrorIs(t, err, ErrMirrorDisabled)
	source.AssertNotCalled(t, "ListListings", mock.Anything, mock.Anything)
}

func TestSetupAndStart_SkipsWithoutMirrorOrSchedule(t *testing.T) {
	job := NewListingSyncJob(new(MockListingSource), nil, zap.NewNop(), &config.Config{ListingSyncJobSchedule: "@every 1m"})
	require.NoError(t, job.SetupAndStart())
	assert.Empty(t, job.cronScheduler.Entries())

	withMirror := newTestJob(t, new(MockListingSource), &fakeES{})
	withMirror.cfg = &config.Config{}
	require.NoError(t, withMirror.SetupAndStart())
	assert.Empty(t, withMirror.cronScheduler.Entries())
}

func TestSetupAndStart_SchedulesJob(t *testing.T) {
	job := newTestJob(t, new(MockListingSource), &fakeES{})
	require.NoError(t, job.SetupAndStart())
	defer job.Stop()
	assert.Len(t, job.cronScheduler.Entries(), 1)
}

func TestSetupAndStart_InvalidSchedule(t *testing.T) {
	job := newTestJob(t, new(MockListingSource), &fakeES{})
	job.cfg = &config.Config{ListingSyncJobSchedule: "every now and then"}
	assert.Error(t, job.SetupAndStart())
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cl := NewCronLogger(zap.New(core))

	cl.Info("schedule", "entry", 1, "dangling")
	cl.Error(errors.New("boom"), "job panicked", "entry", 2)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	info := entries[0].ContextMap()
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.EqualValues(t, 1, info["entry"])
	assert.Equal(t, "MISSING_VALUE", info["dangling"])

	errEntry := entries[1].ContextMap()
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", errEntry["error"])
}
