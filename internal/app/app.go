package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"ilanportali/internal/apiclient"
	"ilanportali/internal/auth"
	"ilanportali/internal/catalog"
	"ilanportali/internal/listings"
	"ilanportali/pkg/domain"
	"ilanportali/pkg/store"
)

// Config holds runtime configuration for the client application.
type Config struct {
	APIBaseURL     string
	AssetOrigin    string
	RequestTimeout time.Duration
	DefaultSort    catalog.SortKey
	HTTPClient     *http.Client
	Tokens         store.TokenStore
}

// App wires the API client, session and listing view together. It is the
// boundary where errors turn into localized messages.
type App struct {
	api         *apiclient.Client
	auth        *auth.Service
	listings    *listings.Repository
	assetOrigin string

	mu   sync.Mutex
	view *catalog.View

	loading  atomic.Bool
	creating atomic.Bool
}

// New constructs the application. The token store must be supplied.
func New(cfg Config) (*App, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token store required")
	}
	api, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: cfg.HTTPClient,
		Timeout:    cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return &App{
		api:         api,
		auth:        auth.NewService(api, cfg.Tokens),
		listings:    listings.NewRepository(api),
		assetOrigin: cfg.AssetOrigin,
		view:        catalog.NewView(cfg.DefaultSort),
	}, nil
}

// Start verifies a restored session and loads the listings concurrently.
// Session verification never fails the start; a listing fetch failure is
// returned as *UserError.
func (a *App) Start(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		a.auth.Verify(ctx)
		return nil
	})
	g.Go(func() error {
		return a.RefreshListings(ctx)
	})
	return g.Wait()
}

// VerifySession runs the startup session check without loading listings.
func (a *App) VerifySession(ctx context.Context) auth.State {
	return a.auth.Verify(ctx)
}

// SessionReady is closed once session-dependent output may be rendered.
func (a *App) SessionReady() <-chan struct{} {
	return a.auth.Ready()
}

// RefreshListings replaces the collection with a fresh fetch. On failure
// the current collection is kept.
func (a *App) RefreshListings(ctx context.Context) error {
	a.loading.Store(true)
	defer a.loading.Store(false)

	items, err := a.listings.FetchAll(ctx)
	if err != nil {
		slog.Error("failed to fetch listings", "err", err)
		return &UserError{Message: msgFetchFailed, Err: err}
	}
	a.mu.Lock()
	a.view.SetListings(items)
	a.mu.Unlock()
	return nil
}

// Loading reports whether a listing fetch is in flight.
func (a *App) Loading() bool {
	return a.loading.Load()
}

// Creating reports whether a listing submission is in flight.
func (a *App) Creating() bool {
	return a.creating.Load()
}

// Search applies a free-text query.
func (a *App) Search(query string) {
	a.mu.Lock()
	a.view.Search(query)
	a.mu.Unlock()
}

// SetSort changes the ordering.
func (a *App) SetSort(key catalog.SortKey) {
	a.mu.Lock()
	a.view.SetSortKey(key)
	a.mu.Unlock()
}

// Listings returns the rendered collection.
func (a *App) Listings() []domain.Listing {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.Listings()
}

// Heading returns the title above the rendered collection.
func (a *App) Heading() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view.Heading()
}

// ImageLink resolves a listing's image against the asset origin.
func (a *App) ImageLink(l domain.Listing) string {
	return l.ImageLink(a.assetOrigin)
}

// Login signs in; failures carry the server's message or a generic one.
func (a *App) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "err", err)
		return domain.User{}, authError(err)
	}
	return user, nil
}

// Signup registers and signs in.
func (a *App) Signup(ctx context.Context, email, password string) (domain.User, error) {
	user, err := a.auth.Signup(ctx, email, password)
	if err != nil {
		slog.Warn("signup failed", "err", err)
		return domain.User{}, authError(err)
	}
	return user, nil
}

// Logout ends the session.
func (a *App) Logout() {
	a.auth.Logout()
}

// CurrentUser returns the signed-in user.
func (a *App) CurrentUser() (domain.User, bool) {
	return a.auth.CurrentUser()
}

// SessionState returns the auth state.
func (a *App) SessionState() auth.State {
	return a.auth.State()
}

// SessionToken returns the bearer token attached to requests.
func (a *App) SessionToken() string {
	return a.api.AuthToken()
}

// AddListing creates a listing and puts it in front of the collection. It
// needs an authenticated session.
func (a *App) AddListing(ctx context.Context, fields listings.NewListing, image *listings.Image) (domain.Listing, error) {
	if a.auth.State() != auth.StateAuthenticated {
		return domain.Listing{}, &UserError{Message: msgLoginRequired, Err: ErrLoginRequired}
	}
	a.creating.Store(true)
	defer a.creating.Store(false)

	listing, err := a.listings.Create(ctx, fields, image)
	if err != nil {
		slog.Error("failed to add listing", "err", err)
		return domain.Listing{}, createError(err)
	}
	a.mu.Lock()
	a.view.Prepend(listing)
	a.mu.Unlock()
	return listing, nil
}
