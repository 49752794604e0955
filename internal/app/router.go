// Package app provides client-side navigation: a route table, a history
// stack, and the authentication gate in front of guarded screens.
package app

import (
	"fmt"
	"sync"

	"devmatch/internal/models"
)

// LoginPath is the entry point unauthenticated navigation falls back to.
const LoginPath = "/login"

// SessionInfo is the slice of the session store the guard consults. The
// two signals are checked independently: token presence alone admits,
// which avoids a redirect flicker while the profile fetch is still in
// flight.
type SessionInfo interface {
	CurrentUser() *models.User
	HasToken() bool
}

// Route is a navigable screen.
type Route struct {
	Path    string
	Guarded bool
}

// Router owns the route table and history stack. Guarded routes
// replace-redirect to LoginPath when neither an in-memory user nor a
// persisted token exists, so back-navigation cannot re-enter the guarded
// screen.
type Router struct {
	mu      sync.Mutex
	session SessionInfo
	routes  map[string]Route
	history []string
}

// NewRouter creates a Router over the given session. The login route is
// pre-registered.
func NewRouter(session SessionInfo) *Router {
	r := &Router{
		session: session,
		routes:  make(map[string]Route),
	}
	r.Handle(Route{Path: LoginPath})
	return r
}

// Handle registers a route.
func (r *Router) Handle(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.Path] = route
}

// Current returns the path on display, or "" before the first navigation.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return ""
	}
	return r.history[len(r.history)-1]
}

// Navigate moves to path, applying the guard, and returns the path
// actually landed on. Navigating to the current path is a no-op, which
// makes the adapter's repeated 401 safeguard safe.
func (r *Router) Navigate(path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.routes[path]
	if !ok {
		return r.currentLocked(), fmt.Errorf("unknown route %q", path)
	}

	if r.currentLocked() == path {
		return path, nil
	}

	if route.Guarded && !r.admitted() {
		r.replaceLocked(LoginPath)
		return LoginPath, nil
	}

	r.history = append(r.history, path)
	return path, nil
}

// Back pops the history stack and returns the new current path. It reports
// false at the bottom of the stack.
func (r *Router) Back() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) < 2 {
		return r.currentLocked(), false
	}
	r.history = r.history[:len(r.history)-1]
	return r.currentLocked(), true
}

// admitted applies the guard predicate: user OR token.
func (r *Router) admitted() bool {
	if r.session == nil {
		return false
	}
	return r.session.CurrentUser() != nil || r.session.HasToken()
}

// replaceLocked swaps the top of the stack instead of pushing, so the
// replaced entry is unreachable via Back.
func (r *Router) replaceLocked(path string) {
	if len(r.history) == 0 {
		r.history = []string{path}
		return
	}
	r.history[len(r.history)-1] = path
}

func (r *Router) currentLocked() string {
	if len(r.history) == 0 {
		return ""
	}
	return r.history[len(r.history)-1]
}
