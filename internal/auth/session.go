package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"folio/internal/apierr"
	"folio/internal/model"
)

const (
	KeyToken = "adminToken"
	KeyUser  = "adminUser"
)

// Session owns the adminToken and adminUser keys. Nothing else writes them.
type Session struct {
	mu    sync.Mutex
	store Store
}

func NewSession(store Store) *Session {
	return &Session{store: store}
}

func (s *Session) SetSession(token string, admin model.Admin) error {
	if token == "" {
		return apierr.New(apierr.KindValidation, "empty token")
	}

	user, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("failed to marshal admin: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(KeyToken, token); err != nil {
		return err
	}
	return s.store.Set(KeyUser, string(user))
}

func (s *Session) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(KeyToken, KeyUser)
}

func (s *Session) CurrentToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.store.Get(KeyToken)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (s *Session) CurrentAdmin() (model.Admin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.store.Get(KeyUser)
	if !ok {
		return model.Admin{}, false
	}
	var admin model.Admin
	if err := json.Unmarshal([]byte(raw), &admin); err != nil {
		return model.Admin{}, false
	}
	return admin, true
}

func (s *Session) RequireToken() (string, error) {
	token, ok := s.CurrentToken()
	if !ok {
		return "", apierr.New(apierr.KindUnauthenticated, "Not logged in")
	}
	return token, nil
}

// Do runs an authenticated call. It fails fast without a token and clears
// the session before returning an unauthenticated failure.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	token, err := s.RequireToken()
	if err != nil {
		return err
	}

	err = fn(ctx, token)
	if errors.Is(err, apierr.ErrUnauthenticated) {
		if clearErr := s.ClearSession(); clearErr != nil {
			slog.Warn("Failed to clear expired session", "error", clearErr)
		}
	}
	return err
}
