package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func exerciseTokenStore(t *testing.T, s TokenStore) {
	t.Helper()
	if _, ok, err := s.Load(); err != nil || ok {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}
	if err := s.Save("abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, ok, err := s.Load()
	if err != nil || !ok || token != "abc" {
		t.Fatalf("load after save: token=%q ok=%v err=%v", token, ok, err)
	}
	if err := s.Save("def"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if token, _, _ := s.Load(); token != "def" {
		t.Fatalf("token after overwrite = %q, want def", token)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, err := s.Load(); err != nil || ok {
		t.Fatalf("expected cleared store, ok=%v err=%v", ok, err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
}

func TestMemoryTokenStore(t *testing.T) {
	exerciseTokenStore(t, NewMemoryTokenStore(""))
}

func TestFileTokenStore(t *testing.T) {
	s, err := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseTokenStore(t, s)
}

func TestFileTokenStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	first, err := NewFileTokenStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := first.Save("persisted"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("token file mode = %o, want 600", perm)
	}

	second, err := NewFileTokenStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	token, ok, err := second.Load()
	if err != nil || !ok || token != "persisted" {
		t.Fatalf("reopened load: token=%q ok=%v err=%v", token, ok, err)
	}
}

func TestFileTokenStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("token: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := NewFileTokenStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, _, err := s.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRedisTokenStore(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisTokenStore(redis.Addr(), "", "ilanportali:")
	defer s.Close()

	exerciseTokenStore(t, s)

	if err := s.Save("xyz"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := redis.Get("ilanportali:token")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != "xyz" {
		t.Fatalf("stored value = %q, want xyz", got)
	}
	if ttl := redis.TTL("ilanportali:token"); ttl != 0 {
		t.Fatalf("expected no ttl, got %v", ttl)
	}
}
