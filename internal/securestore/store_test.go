package securestore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, KeyAuthToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty Get: want ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, KeyAuthToken, "tok-1"); err != nil {
		t.Fatalf("Set token: %v", err)
	}
	if err := s.Set(ctx, KeyUserData, `{"id":"u1"}`); err != nil {
		t.Fatalf("Set user: %v", err)
	}
	if err := s.Set(ctx, KeyAuthToken, "tok-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Get(ctx, KeyAuthToken)
	if err != nil || got != "tok-2" {
		t.Fatalf("Get token: %q %v", got, err)
	}

	if err := s.Delete(ctx, CredentialKeys...); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, k := range CredentialKeys {
		if _, ok, err := Lookup(ctx, s, k); ok || err != nil {
			t.Fatalf("%s still present (err=%v)", k, err)
		}
	}
	if err := s.Delete(ctx, CredentialKeys...); err != nil {
		t.Fatalf("Delete of absent keys: %v", err)
	}
}

func testSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealer("test-passphrase")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return s
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSealerRoundTrip(t *testing.T) {
	s := testSealer(t)
	sealed, err := s.Seal([]byte("secret-token"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("secret-token")) {
		t.Fatalf("plaintext leaked into sealed output")
	}
	plain, err := s.Open(sealed)
	if err != nil || string(plain) != "secret-token" {
		t.Fatalf("Open: %q %v", plain, err)
	}

	// A fresh sealer with the same passphrase reads values sealed under a
	// different salt.
	other, _ := NewSealer("test-passphrase")
	if plain, err := other.Open(sealed); err != nil || string(plain) != "secret-token" {
		t.Fatalf("cross-instance Open: %q %v", plain, err)
	}

	wrong, _ := NewSealer("other")
	if _, err := wrong.Open(sealed); !errors.Is(err, ErrSealed) {
		t.Fatalf("wrong passphrase: got %v", err)
	}
	if _, err := s.Open([]byte("short")); !errors.Is(err, ErrSealed) {
		t.Fatalf("truncated: got %v", err)
	}
}

func TestNewSealerRequiresPassphrase(t *testing.T) {
	if _, err := NewSealer(""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.sealed")
	fs, err := NewFileStore(path, testSealer(t))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exerciseStore(t, fs)
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.sealed")
	ctx := context.Background()

	first, _ := NewFileStore(path, testSealer(t))
	if err := first.Set(ctx, KeyAuthToken, "persisted-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("persisted-token")) {
		t.Fatalf("token stored in clear text")
	}

	second, _ := NewFileStore(path, testSealer(t))
	got, err := second.Get(ctx, KeyAuthToken)
	if err != nil || got != "persisted-token" {
		t.Fatalf("after restart: %q %v", got, err)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")
	s, err := NewSQLiteStore(path, testSealer(t))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("set REDIS_ADDR to run redis store tests")
	}
	s, err := NewRedisStore(context.Background(), addr, "connectu-test:"+uuid.NewString()+":", testSealer(t))
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Options{Backend: "keychain", Passphrase: "x"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	s, err := Open(context.Background(), Options{})
	if err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("default backend should be memory, got %T", s)
	}
}
