package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"ilanportali/internal/apiclient"
	"ilanportali/pkg/domain"
)

const (
	reasonInvalidCreateResponse = "invalid response after creation"
	reasonImageRequired         = "image required"
)

// Requester issues API calls; *apiclient.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, method, path string, body any, headers http.Header) (json.RawMessage, error)
}

// FetchError wraps any failure of the listing fetch.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "fetch listings: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewListing holds the form fields of a listing to create.
type NewListing struct {
	Title    string
	Price    float64
	Location string
	Category domain.Category
}

// Image is the file attached to a new listing.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Repository fetches and creates listings through the API.
type Repository struct {
	api   Requester
	fetch singleflight.Group
}

// NewRepository builds a repository on top of the shared API client.
func NewRepository(api Requester) *Repository {
	return &Repository{api: api}
}

// FetchAll returns the listings as the API sends them. Concurrent callers
// share a single in-flight request.
func (r *Repository) FetchAll(ctx context.Context) ([]domain.Listing, error) {
	v, err, _ := r.fetch.Do("all", func() (any, error) {
		raw, err := r.api.Request(ctx, http.MethodGet, "/listings", nil, nil)
		if err != nil {
			return nil, err
		}
		var items []domain.Listing
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode listings: %w", err)
		}
		if items == nil {
			items = []domain.Listing{}
		}
		return items, nil
	})
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return v.([]domain.Listing), nil
}

// Create submits a new listing with its image. Form preconditions are
// checked before any request is made, and the created listing must come
// back with an id.
func (r *Repository) Create(ctx context.Context, fields NewListing, image *Image) (domain.Listing, error) {
	if err := validate(fields, image); err != nil {
		return domain.Listing{}, err
	}

	body := apiclient.NewMultipart().
		AddField("title", fields.Title).
		AddField("price", strconv.FormatFloat(fields.Price, 'f', -1, 64)).
		AddField("location", fields.Location).
		AddField("category", string(fields.Category)).
		AddFile(apiclient.FormFile{
			Field:       "image",
			Filename:    image.Filename,
			ContentType: image.ContentType,
			Body:        image.Body,
		}).
		AddField("currency", domain.ListingCurrency)

	raw, err := r.api.Request(ctx, http.MethodPost, "/listings", body, nil)
	if err != nil {
		return domain.Listing{}, err
	}

	obj, ok := apiclient.UnwrapObject(raw, "listing")
	if !ok || !apiclient.Truthy(obj.Get("id")) {
		return domain.Listing{}, &apiclient.ProtocolError{Op: "create listing", Reason: reasonInvalidCreateResponse}
	}
	var listing domain.Listing
	if err := json.Unmarshal([]byte(obj.Raw), &listing); err != nil {
		return domain.Listing{}, &apiclient.ProtocolError{Op: "create listing", Reason: reasonInvalidCreateResponse}
	}
	return listing, nil
}

func validate(fields NewListing, image *Image) error {
	switch {
	case strings.TrimSpace(fields.Title) == "":
		return &apiclient.ValidationError{Field: "title", Reason: "required"}
	case fields.Price < 0 || math.IsNaN(fields.Price) || math.IsInf(fields.Price, 0):
		return &apiclient.ValidationError{Field: "price", Reason: "must be a non-negative number"}
	case strings.TrimSpace(fields.Location) == "":
		return &apiclient.ValidationError{Field: "location", Reason: "required"}
	case !fields.Category.Valid():
		return &apiclient.ValidationError{Field: "category", Reason: "unknown category"}
	case image == nil || image.Body == nil:
		return &apiclient.ValidationError{Field: "image", Reason: reasonImageRequired}
	}
	return nil
}
