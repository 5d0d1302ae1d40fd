package catalog

import "ilanportali/pkg/domain"

const (
	headingFeatured = "Öne Çıkan İlanlar"
	headingAll      = "Tüm İlanlar"
)

// View derives the rendered collection from the fetched listings, the
// search query and the sort key. It is not safe for concurrent use.
type View struct {
	all      []domain.Listing
	query    string
	key      SortKey
	heading  string
	filtered []domain.Listing
	sorted   []domain.Listing
	dirty    bool
	// recomputes counts filter/sort passes.
	recomputes int
}

// NewView starts with an empty collection ordered by key.
func NewView(key SortKey) *View {
	if key == "" {
		key = SortNewest
	}
	return &View{key: key, heading: headingFeatured, dirty: true}
}

// SetListings replaces the authoritative collection.
func (v *View) SetListings(all []domain.Listing) {
	v.all = all
	v.dirty = true
}

// Prepend adds a newly created listing in front of the collection.
func (v *View) Prepend(l domain.Listing) {
	next := make([]domain.Listing, 0, len(v.all)+1)
	next = append(next, l)
	next = append(next, v.all...)
	v.all = next
	v.dirty = true
}

// Search sets the free-text query and the matching heading.
func (v *View) Search(query string) {
	if query == "" {
		v.heading = headingAll
	} else {
		v.heading = `"` + query + `" için Arama Sonuçları`
	}
	if query == v.query {
		return
	}
	v.query = query
	v.dirty = true
}

// SetSortKey changes the ordering.
func (v *View) SetSortKey(key SortKey) {
	if key == v.key {
		return
	}
	v.key = key
	v.dirty = true
}

// All returns the authoritative collection.
func (v *View) All() []domain.Listing {
	return v.all
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.query
}

// SortKey returns the current ordering.
func (v *View) SortKey() SortKey {
	return v.key
}

// Heading returns the title shown above the collection.
func (v *View) Heading() string {
	return v.heading
}

// Listings returns the filtered and sorted collection, recomputing it only
// when an input changed since the last call.
func (v *View) Listings() []domain.Listing {
	if v.dirty {
		v.filtered = Filter(v.all, v.query)
		v.sorted = Sort(v.filtered, v.key)
		v.dirty = false
		v.recomputes++
	}
	return v.sorted
}
