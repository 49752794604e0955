// Package session holds the client's belief about which user is currently
// authenticated. The store is an explicit, injected object with a defined
// lifecycle; nothing reads the credential store except through the injected
// TokenSource.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"devmatch/internal/models"
)

// State is the session lifecycle state.
type State string

// Lifecycle: init → authenticated ↔ anonymous → disposed.
const (
	StateInit          State = "init"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
	StateDisposed      State = "disposed"
)

// Sentinel errors.
var (
	ErrDisposed         = errors.New("session store disposed")
	ErrNotAuthenticated = errors.New("no authenticated user")
)

// ProfileAPI is the slice of the HTTP adapter the store needs.
type ProfileAPI interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Logout(ctx context.Context) error
	GetUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error)
}

// TokenSource reports whether a persisted credential artifact exists.
type TokenSource interface {
	HasToken() bool
}

// Store is the process-wide session state.
type Store struct {
	mu     sync.RWMutex
	api    ProfileAPI
	tokens TokenSource
	state  State
	user   *models.User
}

// NewStore creates a Store in the init state.
func NewStore(api ProfileAPI, tokens TokenSource) *Store {
	return &Store{api: api, tokens: tokens, state: StateInit}
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser returns the authenticated user, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// HasToken reports whether a persisted token artifact exists. Token
// presence is checked independently of the in-memory user so the guard can
// admit optimistically while LoadSession is still in flight.
func (s *Store) HasToken() bool {
	s.mu.RLock()
	disposed := s.state == StateDisposed
	s.mu.RUnlock()
	if disposed || s.tokens == nil {
		return false
	}
	return s.tokens.HasToken()
}

// LoadSession re-fetches the profile using the persisted credential. On
// failure the store is left anonymous and the error is returned so the
// caller can redirect to login.
func (s *Store) LoadSession(ctx context.Context) (*models.User, error) {
	if s.State() == StateDisposed {
		return nil, ErrDisposed
	}

	user, err := s.api.GetUser(ctx)
	if err != nil {
		s.transition(StateAnonymous, nil)
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.transition(StateAuthenticated, user)
	return user, nil
}

// Login authenticates and populates the session.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	if s.State() == StateDisposed {
		return nil, ErrDisposed
	}

	user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.transition(StateAuthenticated, user)
	return user, nil
}

// Signup registers a new account and populates the session.
func (s *Store) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if s.State() == StateDisposed {
		return nil, ErrDisposed
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.api.Signup(ctx, req)
	if err != nil {
		return nil, err
	}

	s.transition(StateAuthenticated, user)
	return user, nil
}

// Logout clears the session. State mutates only after the server call
// succeeds.
func (s *Store) Logout(ctx context.Context) error {
	if s.State() == StateDisposed {
		return ErrDisposed
	}

	if err := s.api.Logout(ctx); err != nil {
		return err
	}

	s.transition(StateAnonymous, nil)
	return nil
}

// UpdateProfile applies a partial profile edit and refreshes the in-memory
// user from the server's response.
func (s *Store) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	if s.State() == StateDisposed {
		return nil, ErrDisposed
	}
	if s.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}

	user, err := s.api.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, err
	}

	s.transition(StateAuthenticated, user)
	return user, nil
}

// Dispose ends the lifecycle. Results delivered after disposal are dropped
// by the state checks above.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDisposed
	s.user = nil
}

func (s *Store) transition(state State, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed {
		// Late response after disposal: drop silently.
		return
	}
	s.state = state
	s.user = user
}
