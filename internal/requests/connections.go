package requests

import (
	"context"
	"fmt"
	"sync"

	"devmatch/internal/models"
	"devmatch/internal/observability"
)

// ConnectionLister is the slice of the HTTP adapter the connections
// screen needs.
type ConnectionLister interface {
	GetConnections(ctx context.Context) ([]models.User, error)
}

// Connections is the read-only accepted-connections list. It is fetched
// once and never mutated; there are no actions against entries.
type Connections struct {
	mu     sync.Mutex
	api    ConnectionLister
	log    *observability.APILogger
	items  []models.User
	closed bool
}

// NewConnections creates an unloaded Connections list.
func NewConnections(api ConnectionLister, logger *observability.Logger) *Connections {
	return &Connections{
		api: api,
		log: observability.NewAPILogger(logger),
	}
}

// Load fetches the accepted connections. Failures are logged without a
// notification; the screen shows its empty state.
func (c *Connections) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	items, err := c.api.GetConnections(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err != nil {
		c.log.LogError(ctx, "GET", "/user/connections", err)
		return fmt.Errorf("load connections: %w", err)
	}

	c.items = append([]models.User(nil), items...)
	return nil
}

// Items returns a copy of the connections.
func (c *Connections) Items() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.User(nil), c.items...)
}

// Empty reports whether the list has no entries.
func (c *Connections) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// Close disposes the list.
func (c *Connections) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
