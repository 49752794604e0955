// Package requests holds the fetch-once, mutate-on-action list state
// behind the pending-requests and connections screens.
package requests

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"devmatch/internal/models"
	"devmatch/internal/notify"
	"devmatch/internal/observability"
)

// Sentinel errors.
var (
	ErrClosed        = errors.New("list closed")
	ErrActionPending = errors.New("action already in flight for this request")
)

// Reviewer is the slice of the HTTP adapter the pending-request list needs.
type Reviewer interface {
	GetRequests(ctx context.Context) ([]models.ConnectionRequest, error)
	AcceptRequest(ctx context.Context, id string) error
	RejectRequest(ctx context.Context, id string) error
}

// List is the pending-request screen state: fetched once, rendered
// concurrently (no cursor), and mutated only by removal after a successful
// accept or reject. There is no undo.
type List struct {
	mu       sync.Mutex
	api      Reviewer
	toasts   *notify.Toaster
	log      *observability.APILogger
	items    []models.ConnectionRequest
	inFlight map[string]bool
	closed   bool
}

// NewList creates an unloaded List.
func NewList(api Reviewer, toasts *notify.Toaster, logger *observability.Logger) *List {
	return &List{
		api:      api,
		toasts:   toasts,
		log:      observability.NewAPILogger(logger),
		inFlight: make(map[string]bool),
	}
}

// Load fetches the pending requests. List size is whatever the single
// fetch returned; there is no client-side pagination.
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.mu.Unlock()

	items, err := l.api.GetRequests(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	if err != nil {
		l.log.LogError(ctx, "GET", "/user/requests", err)
		l.toasts.Error("Failed to fetch requests")
		return fmt.Errorf("load requests: %w", err)
	}

	l.items = append([]models.ConnectionRequest(nil), items...)
	return nil
}

// Items returns a copy of the pending requests.
func (l *List) Items() []models.ConnectionRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ConnectionRequest(nil), l.items...)
}

// Empty reports whether no requests remain, driving the empty state.
func (l *List) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items) == 0
}

// Accept accepts the pending request with the given id.
func (l *List) Accept(ctx context.Context, id string) error {
	return l.act(ctx, id, "accept", "/request/review/accepted/"+id, l.api.AcceptRequest,
		"Connection request accepted!", "Failed to accept request")
}

// Reject rejects the pending request with the given id.
func (l *List) Reject(ctx context.Context, id string) error {
	return l.act(ctx, id, "reject", "/user/requests/"+id+"/reject", l.api.RejectRequest,
		"Connection request rejected", "Failed to reject request")
}

// act calls the server and removes the entry locally only on success. The
// guard is per request id: cards render concurrently, so actions against
// different entries may be in flight simultaneously while each entry's own
// action is serialized.
func (l *List) act(ctx context.Context, id, name, path string, op func(context.Context, string) error, success, failure string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.inFlight[id] {
		l.mu.Unlock()
		return ErrActionPending
	}
	l.inFlight[id] = true
	l.mu.Unlock()

	l.log.LogAction(ctx, name, id)
	err := op(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, id)

	if l.closed {
		return nil
	}
	if err != nil {
		// The entry stays; the user may retry.
		l.log.LogError(ctx, "POST", path, err)
		l.toasts.Error(failure)
		return err
	}

	l.removeLocked(id)
	l.toasts.Success(success)
	return nil
}

// Remove removes the request with the given id. Idempotent: absent ids are
// a no-op.
func (l *List) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeLocked(id)
}

func (l *List) removeLocked(id string) bool {
	for i, r := range l.items {
		if r.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Close disposes the list; late settlements are dropped silently.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}
