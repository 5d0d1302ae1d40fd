package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type Category string

const (
	CategoryRealEstate  Category = "Emlak"
	CategoryVehicles    Category = "Vasıta"
	CategoryElectronics Category = "Elektronik"
	CategoryHousehold   Category = "Ev Eşyası"
	CategoryBaby        Category = "Bebek Ürünleri"
)

// DefaultCategory is preselected on the new listing form.
const DefaultCategory = CategoryRealEstate

// Categories lists the selectable categories in display order.
var Categories = []Category{
	CategoryRealEstate,
	CategoryVehicles,
	CategoryElectronics,
	CategoryHousehold,
	CategoryBaby,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ListingCurrency is attached to every listing submitted from this client.
const ListingCurrency = "TRY"

type Listing struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Location  string  `json:"location"`
	Category  string  `json:"category"`
	ImageURL  string  `json:"image_url"`
	CreatedAt string  `json:"created_at"`
}

// UnmarshalJSON reads a listing leniently: numeric fields may arrive as
// JSON strings (SQL DECIMAL columns) and mistyped fields decode to zero
// instead of failing the whole collection.
func (l *Listing) UnmarshalJSON(data []byte) error {
	r := gjson.ParseBytes(data)
	if r.Type == gjson.Null {
		return nil
	}
	if !r.IsObject() {
		return fmt.Errorf("listing: expected object, got %s", r.Type)
	}
	*l = Listing{
		ID:        r.Get("id").Int(),
		UserID:    r.Get("user_id").Int(),
		Title:     scalarString(r.Get("title")),
		Price:     r.Get("price").Float(),
		Currency:  scalarString(r.Get("currency")),
		Location:  scalarString(r.Get("location")),
		Category:  scalarString(r.Get("category")),
		ImageURL:  scalarString(r.Get("image_url")),
		CreatedAt: scalarString(r.Get("created_at")),
	}
	return nil
}

func scalarString(r gjson.Result) string {
	switch r.Type {
	case gjson.String, gjson.Number:
		return r.String()
	default:
		return ""
	}
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// ImageLink joins the asset origin with the listing's server-relative image path.
func (l Listing) ImageLink(origin string) string {
	if l.ImageURL == "" {
		return ""
	}
	origin = strings.TrimRight(origin, "/")
	if strings.HasPrefix(l.ImageURL, "/") {
		return origin + l.ImageURL
	}
	return origin + "/" + l.ImageURL
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02",
}

// CreatedTime parses created_at. Unparseable values yield the zero time.
func (l Listing) CreatedTime() time.Time {
	raw := strings.TrimSpace(l.CreatedAt)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
