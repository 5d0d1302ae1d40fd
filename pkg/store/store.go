package store

// TokenKey is the fixed name under which the bearer token is persisted.
const TokenKey = "token"

// TokenStore persists the session bearer token across process lifetimes.
// Implementations do not inspect the token; only the API decides whether
// it is still valid.
type TokenStore interface {
	// Load returns the persisted token; ok is false when none is stored.
	Load() (token string, ok bool, err error)
	Save(token string) error
	Clear() error
}
