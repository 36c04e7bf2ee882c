// Package listing holds the listing browser, the owner's listing collection
// and the form rules shared by create and edit.
package listing

import (
	"strings"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/domain"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// ParseCategory resolves a route parameter or selector value to a category
// name. It accepts the display name ("Pet Food") or its slug ("pet-food").
// An empty value or "all" resolves to domain.AllCategories. Unknown values
// are returned unchanged with ok=false.
func ParseCategory(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, domain.AllCategories) {
		return domain.AllCategories, true
	}
	for _, c := range domain.Categories {
		if s == string(c) || strings.EqualFold(s, string(c)) || slug.Make(string(c)) == strings.ToLower(s) {
			return string(c), true
		}
	}
	return s, false
}

// CategorySlug returns the route slug of a category.
func CategorySlug(c domain.Category) string {
	return slug.Make(string(c))
}

// Display derives the displayed set from the raw set: a category equality
// filter (skipped for "All" or empty) followed by a case-insensitive
// substring match of term against name or location (skipped only for an
// empty term; whitespace is matched as typed). Order is preserved and items
// is never modified.
func Display(items []domain.Listing, term, category string) []domain.Listing {
	needle := strings.ToLower(term)
	filterCategory := category != "" && category != domain.AllCategories

	out := make([]domain.Listing, 0, len(items))
	for _, l := range items {
		if filterCategory && string(l.Category) != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.Name), needle) &&
			!strings.Contains(strings.ToLower(l.Location), needle) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ApplyCategoryLock forces adoption semantics on a Pets payload: price 0 and
// quantity 1, whatever the form held before.
func ApplyCategoryLock(in *apiclient.ListingInput) {
	if in.Category == domain.CategoryPets {
		in.Price = decimal.Zero
		in.Quantity = 1
	}
}
