package listing

import (
	"strings"
	"testing"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleListings() []domain.Listing {
	return []domain.Listing{
		{ID: "1", Name: "Rex", Category: domain.CategoryPets, Location: "NY"},
		{ID: "2", Name: "Bowl", Category: domain.CategoryAccessories, Location: "LA"},
		{ID: "3", Name: "Kibble", Category: domain.CategoryPetFood, Location: "Reno"},
		{ID: "4", Name: "Shampoo", Category: domain.CategoryCareProducts, Location: "Austin"},
		{ID: "5", Name: "Bella", Category: domain.CategoryPets, Location: "Los Angeles"},
	}
}

func ids(items []domain.Listing) []string {
	out := make([]string, 0, len(items))
	for _, l := range items {
		out = append(out, l.ID)
	}
	return out
}

func TestDisplay_Scenario(t *testing.T) {
	items := []domain.Listing{
		{Name: "Rex", Category: domain.CategoryPets, Location: "NY"},
		{Name: "Bowl", Category: domain.CategoryAccessories, Location: "LA"},
	}
	got := Display(items, "re", domain.AllCategories)
	if diff := cmp.Diff(items[:1], got); diff != "" {
		t.Fatalf("Display mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplay_Table(t *testing.T) {
	tests := []struct {
		name     string
		term     string
		category string
		want     []string
	}{
		{"no filters", "", domain.AllCategories, []string{"1", "2", "3", "4", "5"}},
		{"empty category means all", "", "", []string{"1", "2", "3", "4", "5"}},
		{"category only", "", "Pets", []string{"1", "5"}},
		{"term matches location case-insensitively", "los", domain.AllCategories, []string{"5"}},
		{"term matches name or location", "re", domain.AllCategories, []string{"1", "3"}},
		{"term and category", "a", "Pets", []string{"5"}},
		{"whitespace-only term is matched as typed", "   ", "Pet Food", []string{}},
		{"leading space is part of the term", " re", domain.AllCategories, []string{}},
		{"inner space matches", "s an", domain.AllCategories, []string{"5"}},
		{"trailing space is part of the term", "rex ", domain.AllCategories, []string{}},
		{"no match", "zebra", domain.AllCategories, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Display(sampleListings(), tc.term, tc.category)))
		})
	}
}

func TestDisplay_SubsetPredicateAndIdempotence(t *testing.T) {
	items := sampleListings()
	terms := []string{"", "a", "RE", "o", "x", " re", "  ", "s an", "rex "}
	categories := []string{domain.AllCategories, "Pets", "Pet Food", "Accessories", "Care Products"}

	for _, term := range terms {
		for _, category := range categories {
			got := Display(items, term, category)
			assert.Equal(t, got, Display(items, term, category), "pure function of its inputs")

			prev := -1
			for _, l := range got {
				idx := indexOf(items, l.ID)
				assert.GreaterOrEqual(t, idx, 0, "displayed item must come from the raw set")
				assert.Greater(t, idx, prev, "server order is preserved")
				prev = idx

				assert.True(t, category == domain.AllCategories || string(l.Category) == category)
				lt := strings.ToLower(term)
				assert.True(t, term == "" ||
					strings.Contains(strings.ToLower(l.Name), lt) ||
					strings.Contains(strings.ToLower(l.Location), lt))
			}
		}
	}
	assert.Equal(t, sampleListings(), items, "input is not modified")
}

func indexOf(items []domain.Listing, id string) int {
	for i, l := range items {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", domain.AllCategories, true},
		{"all", domain.AllCategories, true},
		{"Pets", "Pets", true},
		{"pet-food", "Pet Food", true},
		{"care-products", "Care Products", true},
		{"accessories", "Accessories", true},
		{"reptiles", "reptiles", false},
	}
	for _, tc := range tests {
		got, ok := ParseCategory(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.wantOK, ok, tc.in)
	}
	assert.Equal(t, "pet-food", CategorySlug(domain.CategoryPetFood))
}

func TestApplyCategoryLock(t *testing.T) {
	in := apiclient.ListingInput{Category: domain.CategoryPets, Price: decimal.NewFromInt(250), Quantity: 4}
	ApplyCategoryLock(&in)
	assert.True(t, in.Price.IsZero())
	assert.Equal(t, 1, in.Quantity)

	other := apiclient.ListingInput{Category: domain.CategoryPetFood, Price: decimal.NewFromInt(25), Quantity: 4}
	ApplyCategoryLock(&other)
	assert.True(t, decimal.NewFromInt(25).Equal(other.Price))
	assert.Equal(t, 4, other.Quantity)
}
