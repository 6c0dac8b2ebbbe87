// Package store holds the client-side session and entity caches. The
// backend owns every entity; these caches hold transient, possibly
// stale copies, mutated optimistically by user actions. All caches are
// mutex-guarded single-writer structures, created at session start and
// discarded at logout.
package store

import (
	"errors"

	"github.com/bugtrackhq/bugtrack/internal/localstore"
)

// Session holds the authenticated user's identity and bearer token.
// The token is immutable for the session's lifetime; a new login
// creates a new Session.
type Session struct {
	userID   string
	userName string
	token    string
}

// NewSession creates a session for an authenticated user.
func NewSession(userID, userName, token string) *Session {
	return &Session{
		userID:   userID,
		userName: userName,
		token:    token,
	}
}

// UserID returns the authenticated user's id.
func (s *Session) UserID() string { return s.userID }

// UserName returns the authenticated user's display name.
func (s *Session) UserName() string { return s.userName }

// Token returns the session bearer token.
func (s *Session) Token() string { return s.token }

// SaveToken persists the bearer token in the client-local store so
// later invocations stay logged in.
func SaveToken(store *localstore.Store, token string) error {
	return store.Put(localstore.KeySessionToken, token)
}

// LoadToken reads the persisted bearer token. A missing token returns
// an empty string, not an error: the caller treats that as "not
// logged in".
func LoadToken(store *localstore.Store) (string, error) {
	var token string
	err := store.Get(localstore.KeySessionToken, &token)
	if errors.Is(err, localstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// ClearToken removes the persisted bearer token (logout).
func ClearToken(store *localstore.Store) error {
	return store.Delete(localstore.KeySessionToken)
}
