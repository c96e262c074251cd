package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/apierr"
	"folio/internal/model"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession(NewMemoryStore())

	if _, ok := s.CurrentToken(); ok {
		t.Fatal("new session should have no token")
	}
	if _, err := s.RequireToken(); !errors.Is(err, apierr.ErrUnauthenticated) {
		t.Fatalf("RequireToken() error = %v", err)
	}

	admin := model.Admin{ID: "1", Username: "admin", Name: "Osama"}
	if err := s.SetSession("jwt", admin); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	token, ok := s.CurrentToken()
	if !ok || token != "jwt" {
		t.Errorf("CurrentToken() = %q, %v", token, ok)
	}
	got, ok := s.CurrentAdmin()
	if !ok || got != admin {
		t.Errorf("CurrentAdmin() = %+v, %v", got, ok)
	}

	if err := s.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if _, ok := s.CurrentToken(); ok {
		t.Error("token should be cleared")
	}
	if _, ok := s.CurrentAdmin(); ok {
		t.Error("admin should be cleared")
	}
}

func TestSetSessionRejectsEmptyToken(t *testing.T) {
	s := NewSession(NewMemoryStore())
	if err := s.SetSession("", model.Admin{}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("SetSession() error = %v", err)
	}
}

func TestSessionDo(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		callErr    error
		wantCalled bool
		wantKind   apierr.Kind
		wantToken  bool
	}{
		{
			name:       "success",
			token:      "jwt",
			wantCalled: true,
			wantToken:  true,
		},
		{
			name:       "unauthenticatedClears",
			token:      "jwt",
			callErr:    apierr.FromStatus(401, ""),
			wantCalled: true,
			wantKind:   apierr.KindUnauthenticated,
			wantToken:  false,
		},
		{
			name:       "otherFailureKeeps",
			token:      "jwt",
			callErr:    apierr.FromStatus(500, ""),
			wantCalled: true,
			wantKind:   apierr.KindRemoteFailure,
			wantToken:  true,
		},
		{
			name:       "noTokenFailsFast",
			wantCalled: false,
			wantKind:   apierr.KindUnauthenticated,
			wantToken:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(NewMemoryStore())
			if tt.token != "" {
				if err := s.SetSession(tt.token, model.Admin{Username: "admin"}); err != nil {
					t.Fatal(err)
				}
			}

			called := false
			err := s.Do(context.Background(), func(_ context.Context, token string) error {
				called = true
				if token != tt.token {
					t.Errorf("token = %q, want %q", token, tt.token)
				}
				return tt.callErr
			})

			if called != tt.wantCalled {
				t.Errorf("called = %v, want %v", called, tt.wantCalled)
			}
			if got := apierr.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q, want %q", got, tt.wantKind)
			}
			if _, ok := s.CurrentToken(); ok != tt.wantToken {
				t.Errorf("token present = %v, want %v", ok, tt.wantToken)
			}
		})
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := NewSession(NewFileStore(path))
	if err := s.SetSession("jwt", model.Admin{Username: "admin"}); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	reopened := NewSession(NewFileStore(path))
	if token, ok := reopened.CurrentToken(); !ok || token != "jwt" {
		t.Errorf("reopened token = %q, %v", token, ok)
	}
	if admin, ok := reopened.CurrentAdmin(); !ok || admin.Username != "admin" {
		t.Errorf("reopened admin = %+v, %v", admin, ok)
	}

	if err := reopened.ClearSession(); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("session file should be removed, stat err = %v", err)
	}
}

func TestFileStoreIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	if _, ok := store.Get(KeyToken); ok {
		t.Error("corrupt file should load as empty")
	}
	if err := store.Set(KeyToken, "t"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := NewFileStore(path).Get(KeyToken); v != "t" {
		t.Errorf("Get() = %q", v)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Set("a", "1")
	_ = store.Set("b", "2")
	if err := store.Delete("a", "missing"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := store.Get("a"); ok {
		t.Error("a should be deleted")
	}
	if v, ok := store.Get("b"); !ok || v != "2" {
		t.Errorf("b = %q, %v", v, ok)
	}
}
