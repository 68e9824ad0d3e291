package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"powereye/internal/model"
)

// ErrNotLoggedIn is returned by operations that need a stored token.
var ErrNotLoggedIn = errors.New("not logged in")

type sessionState struct {
	Token string         `json:"token"`
	User  *model.Profile `json:"user"`
}

// Session holds the token and last known profile, persisted to a file that
// only the current user can read.
type Session struct {
	path   string
	client *Client

	mu    sync.Mutex
	state sessionState
}

// DefaultSessionPath returns the per-user session file location.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "powereye", "session.json"), nil
}

// OpenSession loads the session stored at path. A missing file is an
// empty session.
func OpenSession(path string, client *Client) (*Session, error) {
	s := &Session{path: path, client: client}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		// unreadable state is discarded like a rejected token
		s.state = sessionState{}
	}
	return s, nil
}

// Login signs in and persists the token and profile.
func (s *Session) Login(ctx context.Context, email, password string) (*model.Profile, error) {
	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = sessionState{Token: res.Token, User: &res.User}
	if err := s.save(); err != nil {
		return nil, err
	}
	user := res.User
	return &user, nil
}

// Logout asks the server to revoke the token, then forgets it locally even
// if the server could not be reached.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	s.mu.Unlock()

	var remoteErr error
	if token != "" {
		remoteErr = s.client.Logout(ctx, token)
		var apiErr *APIError
		if errors.As(remoteErr, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			remoteErr = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.clear(); err != nil {
		return err
	}
	return remoteErr
}

// Restore revalidates the stored token against the server. A token the
// server rejects (401) or whose user is gone (404) is cleared silently.
// Transport failures leave the session as it was and are returned.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	profile, err := s.client.Profile(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusNotFound) {
			return s.clear()
		}
		return err
	}

	s.state.User = profile
	return s.save()
}

// Token returns the stored bearer token, or ErrNotLoggedIn.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" {
		return "", ErrNotLoggedIn
	}
	return s.state.Token, nil
}

// User returns the last known profile.
func (s *Session) User() (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return model.Profile{}, false
	}
	return *s.state.User, true
}

// IsAdmin reports whether the cached profile has the admin role. It only
// drives what the client shows; the server decides access on its own.
func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.Role == model.RoleAdmin
}

// IsOperator reports whether the cached profile has the operator role.
func (s *Session) IsOperator() bool {
	u, ok := s.User()
	return ok && u.Role == model.RoleOperator
}

func (s *Session) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *Session) clear() error {
	s.state = sessionState{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
