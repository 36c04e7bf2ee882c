// Package dashboard computes the signed-in user's overview: listings per
// category and orders per day.
package dashboard

import (
	"context"
	"sort"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/platform/elasticsearch"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the backend data the dashboard reads.
type Source interface {
	ListListings(ctx context.Context, q apiclient.ListingQuery) ([]domain.Listing, error)
	ListOrders(ctx context.Context, email string) ([]domain.Order, error)
}

// CategoryCounter counts an owner's listings per category name.
type CategoryCounter interface {
	CountByCategory(ctx context.Context, email string) (map[string]int64, error)
}

// CategoryCount is one bar of the listings overview.
type CategoryCount struct {
	Category domain.Category `json:"category"`
	Count    int64           `json:"count"`
}

// DayCount is one point of the orders trend.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the dashboard payload.
type Summary struct {
	ListingsOverview []CategoryCount `json:"listingsOverview"`
	OrdersTrend      []DayCount      `json:"ordersTrend"`
	TotalListings    int             `json:"totalListings"`
	TotalOrders      int             `json:"totalOrders"`
	// CountsSource is "mirror" when the overview came from the search index.
	CountsSource string `json:"countsSource"`
}

// Service builds summaries.
type Service struct {
	source  Source
	counter CategoryCounter
	logger  *zap.Logger
}

// NewService returns a dashboard service. counter may be nil.
func NewService(source Source, counter CategoryCounter, logger *zap.Logger) *Service {
	return &Service{source: source, counter: counter, logger: logger.Named("dashboard")}
}

// Build fetches the owner's listings and orders concurrently and aggregates
// them.
func (s *Service) Build(ctx context.Context, email string) (*Summary, error) {
	var (
		listings []domain.Listing
		orders   []domain.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		listings, err = s.source.ListListings(gctx, apiclient.ListingQuery{Email: email})
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.source.ListOrders(gctx, email)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		OrdersTrend:   OrdersPerDay(orders),
		TotalListings: len(listings),
		TotalOrders:   len(orders),
		CountsSource:  "backend",
	}
	summary.ListingsOverview = ListingsPerCategory(listings)

	if s.counter != nil {
		counts, err := s.counter.CountByCategory(ctx, email)
		if err != nil {
			s.logger.Warn("Listing mirror unavailable; using fetched listings", zap.Error(err))
		} else {
			summary.ListingsOverview = zeroFilled(counts)
			summary.CountsSource = "mirror"
		}
	}
	return summary, nil
}

// ListingsPerCategory counts listings per category. Every category appears,
// in display order, even with a zero count.
func ListingsPerCategory(listings []domain.Listing) []CategoryCount {
	counts := make(map[string]int64, len(domain.Categories))
	for _, l := range listings {
		counts[string(l.Category)]++
	}
	return zeroFilled(counts)
}

func zeroFilled(counts map[string]int64) []CategoryCount {
	out := make([]CategoryCount, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, CategoryCount{Category: c, Count: counts[string(c)]})
	}
	return out
}

// OrdersPerDay counts orders per calendar date, oldest first. Orders without
// a date are skipped.
func OrdersPerDay(orders []domain.Order) []DayCount {
	counts := make(map[string]int)
	for _, o := range orders {
		day := calendarDay(o.Date)
		if day == "" {
			continue
		}
		counts[day]++
	}
	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// calendarDay trims an ISO timestamp to its date.
func calendarDay(date string) string {
	if len(date) >= 10 {
		return date[:10]
	}
	return date
}

// ESCounter reads category counts from the listing mirror.
type ESCounter struct {
	client *elasticsearch.ESClientWrapper
}

// NewESCounter returns a nil CategoryCounter when the mirror is disabled.
func NewESCounter(client *elasticsearch.ESClientWrapper) CategoryCounter {
	if client == nil {
		return nil
	}
	return &ESCounter{client: client}
}

// CountByCategory runs a terms aggregation filtered by owner email.
func (c *ESCounter) CountByCategory(ctx context.Context, email string) (map[string]int64, error) {
	return elasticsearch.CountByCategory(ctx, c.client, email)
}
