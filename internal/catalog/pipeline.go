package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ilanportali/pkg/domain"
)

// SortKey selects the ordering of the rendered collection.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

// SortKeys lists the selectable orderings with their labels.
var SortKeys = []struct {
	Key   SortKey
	Label string
}{
	{SortNewest, "Tarihe Göre (En Yeni)"},
	{SortPriceAsc, "Fiyata Göre (Artan)"},
	{SortPriceDesc, "Fiyata Göre (Azalan)"},
}

// Filter returns the listings whose title, category or location contains
// query, ignoring case. An empty query returns all itself.
func Filter(all []domain.Listing, query string) []domain.Listing {
	if query == "" {
		return all
	}
	lower := cases.Lower(language.Und)
	needle := lower.String(query)
	out := make([]domain.Listing, 0, len(all))
	for _, l := range all {
		if strings.Contains(lower.String(l.Title), needle) ||
			strings.Contains(lower.String(l.Category), needle) ||
			strings.Contains(lower.String(l.Location), needle) {
			out = append(out, l)
		}
	}
	return out
}

// Sort returns a new, stably ordered slice. Unknown keys sort newest first.
func Sort(filtered []domain.Listing, key SortKey) []domain.Listing {
	out := slices.Clone(filtered)
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Listing) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Listing) int {
			return cmp.Compare(b.Price, a.Price)
		})
	default:
		slices.SortStableFunc(out, func(a, b domain.Listing) int {
			return b.CreatedTime().Compare(a.CreatedTime())
		})
	}
	return out
}
