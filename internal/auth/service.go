package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"

	"ilanportali/internal/apiclient"
	"ilanportali/pkg/domain"
	"ilanportali/pkg/store"
)

// State is the session lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateVerifying
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

const (
	reasonInvalidResponse = "invalid server response"
	reasonMissingIdentity = "response carries no user identity"
)

// Gateway is the subset of the API client the auth service needs.
type Gateway interface {
	Request(ctx context.Context, method, path string, body any, headers http.Header) (json.RawMessage, error)
	SetAuthToken(token string)
}

// Service runs login, signup, verification and logout over the API
// gateway and the token store.
type Service struct {
	gateway Gateway
	tokens  store.TokenStore

	mu    sync.RWMutex
	state State
	user  domain.User

	verifyOnce sync.Once
	ready      chan struct{}
}

// NewService restores the persisted token, if any. A restored token puts
// the service in StateVerifying until Verify runs.
func NewService(gateway Gateway, tokens store.TokenStore) *Service {
	s := &Service{
		gateway: gateway,
		tokens:  tokens,
		state:   StateUnauthenticated,
		ready:   make(chan struct{}),
	}
	token, ok, err := tokens.Load()
	if err != nil {
		slog.Warn("failed to load persisted session", "err", err)
	}
	if err == nil && ok {
		gateway.SetAuthToken(token)
		s.state = StateVerifying
		return s
	}
	s.verifyOnce.Do(func() { close(s.ready) })
	return s
}

// Ready is closed once the startup verification finished. Output that
// depends on the session must wait for it.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// State returns the current session state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser returns the authenticated user.
func (s *Service) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return domain.User{}, false
	}
	return s.user, true
}

// Login authenticates with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	return s.authenticate(ctx, "login", "/auth/login", email, password)
}

// Signup registers a new account and signs it in.
func (s *Service) Signup(ctx context.Context, email, password string) (domain.User, error) {
	return s.authenticate(ctx, "signup", "/auth/register", email, password)
}

func (s *Service) authenticate(ctx context.Context, op, path, email, password string) (domain.User, error) {
	payload := map[string]string{"email": email, "password": password}
	raw, err := s.gateway.Request(ctx, http.MethodPost, path, payload, nil)
	if err != nil {
		return domain.User{}, err
	}

	token := gjson.GetBytes(raw, "token")
	userField := gjson.GetBytes(raw, "user")
	if token.Type != gjson.String || token.String() == "" || !userField.IsObject() {
		return domain.User{}, &apiclient.ProtocolError{Op: op, Reason: reasonInvalidResponse}
	}
	var user domain.User
	if err := json.Unmarshal([]byte(userField.Raw), &user); err != nil {
		return domain.User{}, &apiclient.ProtocolError{Op: op, Reason: reasonInvalidResponse}
	}

	s.mu.Lock()
	if err := s.tokens.Save(token.String()); err != nil {
		s.mu.Unlock()
		return domain.User{}, fmt.Errorf("persist session: %w", err)
	}
	s.gateway.SetAuthToken(token.String())
	s.state = StateAuthenticated
	s.user = user
	s.mu.Unlock()

	slog.Info("session established", "op", op, "user_id", user.ID)
	return user, nil
}

// Verify checks a restored token against GET /auth/me. It acts at most once
// per process and only while the service is verifying. Any failure, or a
// payload without an identity, ends the session exactly like Logout unless
// a login or logout already replaced the restored session.
func (s *Service) Verify(ctx context.Context) State {
	s.verifyOnce.Do(func() {
		defer close(s.ready)
		if s.State() != StateVerifying {
			return
		}
		user, err := s.fetchIdentity(ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateVerifying {
			slog.Info("persisted session superseded during verification", "state", s.state.String())
			return
		}
		if err != nil {
			slog.Info("persisted session rejected", "err", err)
			s.endSessionLocked()
			return
		}
		s.state = StateAuthenticated
		s.user = user
	})
	return s.State()
}

func (s *Service) fetchIdentity(ctx context.Context) (domain.User, error) {
	raw, err := s.gateway.Request(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return domain.User{}, err
	}
	obj, ok := apiclient.UnwrapObject(raw, "user")
	if !ok || !apiclient.Truthy(obj.Get("id")) {
		return domain.User{}, &apiclient.ProtocolError{Op: "verify", Reason: reasonMissingIdentity}
	}
	var user domain.User
	if err := json.Unmarshal([]byte(obj.Raw), &user); err != nil {
		return domain.User{}, &apiclient.ProtocolError{Op: "verify", Reason: reasonMissingIdentity}
	}
	return user, nil
}

// Logout drops the session locally. It has no network effect.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endSessionLocked()
}

// endSessionLocked clears the store, the gateway header and the state.
// s.mu must be held.
func (s *Service) endSessionLocked() {
	if err := s.tokens.Clear(); err != nil {
		slog.Warn("failed to clear persisted session", "err", err)
	}
	s.gateway.SetAuthToken("")
	s.state = StateUnauthenticated
	s.user = domain.User{}
}
