// Package feed drives sequential traversal of the candidate feed: fetch
// once, show one candidate at a time, act, advance.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"devmatch/internal/models"
	"devmatch/internal/notify"
	"devmatch/internal/observability"
)

// Phase is the controller state.
type Phase string

// Controller phases. Empty is the terminal phase for a zero-entry fetch.
const (
	PhaseLoading   Phase = "loading"
	PhaseReady     Phase = "ready"
	PhaseExhausted Phase = "exhausted"
	PhaseEmpty     Phase = "empty"
)

// Sentinel errors.
var (
	ErrClosed        = errors.New("feed controller closed")
	ErrActionPending = errors.New("action already in flight for the current candidate")
	ErrNoCandidate   = errors.New("no current candidate")
	ErrNotCurrent    = errors.New("candidate is not the one on display")
	ErrAlreadyLoaded = errors.New("feed already loaded")
	ErrNotResettable = errors.New("reset is only valid once the feed is drained")
)

// Swiper is the slice of the HTTP adapter the controller needs.
type Swiper interface {
	GetFeed(ctx context.Context) ([]models.User, error)
	SendInterest(ctx context.Context, id string) error
	Ignore(ctx context.Context, id string) error
}

// Controller owns the feed screen's state. The fetched list is kept as an
// immutable traversal snapshot; the cursor indexes that snapshot and
// increments by exactly one per successful action, independent of removal.
// A separate remaining list receives the idempotent remove-by-id mutation.
type Controller struct {
	mu        sync.Mutex
	api       Swiper
	toasts    *notify.Toaster
	log       *observability.APILogger
	phase     Phase
	snapshot  []models.User
	remaining []models.User
	cursor    int
	inFlight  bool
	closed    bool
}

// New creates a Controller in the Loading phase.
func New(api Swiper, toasts *notify.Toaster, logger *observability.Logger) *Controller {
	return &Controller{
		api:    api,
		toasts: toasts,
		log:    observability.NewAPILogger(logger),
		phase:  PhaseLoading,
	}
}

// Load fetches the feed once. On failure the controller stays in Loading
// with the error logged; there is no automatic retry.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.phase != PhaseLoading {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.mu.Unlock()

	list, err := c.api.GetFeed(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// Screen went away while the fetch was in flight.
		return nil
	}
	if err != nil {
		c.log.LogError(ctx, "GET", "/user/feed", err)
		return fmt.Errorf("load feed: %w", err)
	}

	c.snapshot = append([]models.User(nil), list...)
	c.remaining = append([]models.User(nil), list...)
	c.cursor = 0
	if len(c.snapshot) == 0 {
		c.phase = PhaseEmpty
	} else {
		c.phase = PhaseReady
	}
	return nil
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Cursor returns the traversal position.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Remaining returns a copy of the entries not yet acted on.
func (c *Controller) Remaining() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.User(nil), c.remaining...)
}

// Current returns the candidate on display. The cursor is bounds-checked;
// outside Ready there is no current candidate.
func (c *Controller) Current() (models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseReady || c.cursor >= len(c.snapshot) {
		return models.User{}, false
	}
	return c.snapshot[c.cursor], true
}

// Interested expresses interest in the current candidate.
func (c *Controller) Interested(ctx context.Context, id string) error {
	return c.act(ctx, id, "interested", c.api.SendInterest, "Connection request sent!")
}

// NotInterested passes on the current candidate.
func (c *Controller) NotInterested(ctx context.Context, id string) error {
	return c.act(ctx, id, "ignored", c.api.Ignore, "Maybe next time")
}

// act runs one swipe action: call the server, and only on success advance
// the cursor by one AND remove the candidate by id. Both mutations are
// applied; neither substitutes for the other. While a call is in flight
// further actions are rejected, not queued.
func (c *Controller) act(ctx context.Context, id, name string, op func(context.Context, string) error, success string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.phase != PhaseReady || c.cursor >= len(c.snapshot) {
		c.mu.Unlock()
		return ErrNoCandidate
	}
	if c.snapshot[c.cursor].ID != id {
		c.mu.Unlock()
		return ErrNotCurrent
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrActionPending
	}
	c.inFlight = true
	c.mu.Unlock()

	c.log.LogAction(ctx, name, id)
	err := op(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if c.closed {
		// Late settlement after Close: drop silently.
		return nil
	}
	if err != nil {
		// Pessimistic by design: nothing was mutated, so nothing reverts.
		// The action is safe to retry.
		c.log.LogError(ctx, "POST", "/request/send/"+name, err)
		c.toasts.Error("Action failed, please try again")
		return err
	}

	c.cursor++
	c.removeLocked(id)
	if c.cursor >= len(c.snapshot) {
		c.phase = PhaseExhausted
	}
	c.toasts.Success(success)
	return nil
}

// Remove removes the entry with the given id from the remaining list. It
// is idempotent: removing an absent id is a no-op, and a duplicate success
// callback removes nothing twice.
func (c *Controller) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(id)
}

func (c *Controller) removeLocked(id string) bool {
	for i, u := range c.remaining {
		if u.ID == id {
			c.remaining = append(c.remaining[:i], c.remaining[i+1:]...)
			return true
		}
	}
	return false
}

// Reset re-enters Loading from a drained feed and re-fetches.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.phase != PhaseExhausted && c.phase != PhaseEmpty {
		c.mu.Unlock()
		return ErrNotResettable
	}
	c.phase = PhaseLoading
	c.snapshot = nil
	c.remaining = nil
	c.cursor = 0
	c.mu.Unlock()

	return c.Load(ctx)
}

// Close disposes the controller. Results delivered after Close are
// dropped silently.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
