// Package session holds the admin's authentication state: the bearer token
// and the authenticated flag derived from it.
//
// A Store is created once per process and handed to every consumer; there is
// no package-level instance. All reads of the token go through the Store so
// the flag can never disagree with the token.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrEmptyToken is returned by LoginSuccess when given an empty token.
var ErrEmptyToken = errors.New("token must not be empty")

// State is a snapshot of the session.
type State struct {
	Token           string `json:"-"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// Reader is the read side of a Store, which is all guards and pages need.
type Reader interface {
	State() State
}

// Store is the single source of truth for the current session.
type Store struct {
	mu        sync.RWMutex
	token     string
	persist   TokenStore
	logger    zerolog.Logger
	listeners []func(State)
}

// NewStore creates an unauthenticated store backed by persist. Call
// Initialize to rehydrate the persisted token.
func NewStore(persist TokenStore, logger zerolog.Logger) *Store {
	if persist == nil {
		persist = NewMemoryStore("")
	}
	return &Store{
		persist: persist,
		logger:  logger.With().Str("component", "session").Logger(),
	}
}

// Initialize reads the persisted token. A missing token is a valid
// unauthenticated state; a failing backend is logged and treated the same.
func (s *Store) Initialize(ctx context.Context) {
	token, err := s.persist.Load()
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Msg("Failed to read persisted token, starting unauthenticated")
	}
	if err != nil {
		token = ""
	}

	s.mu.Lock()
	s.token = token
	state := s.stateLocked()
	s.mu.Unlock()

	s.logger.Debug().Bool("authenticated", state.IsAuthenticated).Msg("Session initialized")
	s.notify(state)
}

// LoginSuccess authenticates the session with token and persists it. Any
// previous token is overwritten. If persisting fails the in-memory session
// stays authenticated and the error is returned.
func (s *Store) LoginSuccess(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	s.token = token
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)

	if err := s.persist.Save(token); err != nil {
		s.logger.Warn().Err(err).Msg("Token not persisted")
		return fmt.Errorf("session authenticated but token not persisted: %w", err)
	}
	return nil
}

// Logout clears the session and erases the persisted token.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.token = ""
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)

	if err := s.persist.Delete(); err != nil {
		s.logger.Warn().Err(err).Msg("Persisted token not erased")
		return fmt.Errorf("failed to erase persisted token: %w", err)
	}
	return nil
}

// State returns a consistent snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	return s.State().Token
}

func (s *Store) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

// OnChange registers fn to be called synchronously after every transition.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) stateLocked() State {
	return State{Token: s.token, IsAuthenticated: s.token != ""}
}

func (s *Store) notify(state State) {
	s.mu.RLock()
	listeners := make([]func(State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}
