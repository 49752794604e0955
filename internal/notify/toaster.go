// Package notify provides the transient notification side-channel: a
// bounded single-slot publisher with a fixed auto-dismiss timer.
package notify

import (
	"sync"
	"time"
)

// Level is the visual severity of a toast.
type Level string

// Toast levels.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Toast is a single transient notification.
type Toast struct {
	Message string
	Level   Level
}

// Toaster holds at most one pending toast. Publishing replaces any pending
// one and restarts the dismiss timer. All methods are nil-safe so callers
// can run without a notifier wired.
type Toaster struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Toast
	timer   *time.Timer
	onShow  func(Toast)
}

// DefaultTTL is the fixed auto-dismiss duration.
const DefaultTTL = 5 * time.Second

// NewToaster creates a Toaster with the given dismiss duration. A
// non-positive ttl falls back to DefaultTTL.
func NewToaster(ttl time.Duration) *Toaster {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Toaster{ttl: ttl}
}

// OnShow registers a callback invoked for each published toast, for the
// rendering layer.
func (t *Toaster) OnShow(fn func(Toast)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onShow = fn
}

// Show publishes a toast, replacing any pending one and restarting the
// dismiss timer.
func (t *Toaster) Show(toast Toast) {
	if t == nil {
		return
	}
	if toast.Level == "" {
		toast.Level = LevelInfo
	}

	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.current = &toast
	t.timer = time.AfterFunc(t.ttl, func() { t.dismiss(&toast) })
	onShow := t.onShow
	t.mu.Unlock()

	if onShow != nil {
		onShow(toast)
	}
}

// Success publishes a success-level toast.
func (t *Toaster) Success(message string) { t.Show(Toast{Message: message, Level: LevelSuccess}) }

// Error publishes an error-level toast.
func (t *Toaster) Error(message string) { t.Show(Toast{Message: message, Level: LevelError}) }

// Info publishes an info-level toast.
func (t *Toaster) Info(message string) { t.Show(Toast{Message: message, Level: LevelInfo}) }

// Current returns the pending toast, or nil after dismissal.
func (t *Toaster) Current() *Toast {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Close stops the pending timer and clears the slot.
func (t *Toaster) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.current = nil
}

// dismiss clears the slot only if the expiring toast is still the one on
// display; a replacement published meanwhile survives.
func (t *Toaster) dismiss(expired *Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == expired {
		t.current = nil
		t.timer = nil
	}
}
