// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about commit flushes and drag gestures.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the grid engine free of any particular metrics backend
//   - Allows different backends ([PrometheusHooks], log-based hooks, tests)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCommitHooks(&myCommitHooks{})
//	    observability.SetResizeHooks(&myResizeHooks{})
//	    // ... run application
//	}
//
// The grid engine calls hooks to emit events:
//
//	observability.Commits().OnCommitFlush(instance, commitID, grids, tiles, notified)
//
// Hooks are called synchronously from the goroutine that flushes or resizes, so
// implementations must be cheap.
package observability

import (
	"sync"
)

// =============================================================================
// Commit Hooks
// =============================================================================

// CommitHooks receives events from the commit batcher.
type CommitHooks interface {
	// OnCommitFlush records a completed commit. grids and tiles count the
	// changed nodes; notified counts observers that were refreshed.
	OnCommitFlush(instance string, commitID, grids, tiles, notified int)
}

// =============================================================================
// Resize Hooks
// =============================================================================

// ResizeHooks receives events from drag gestures.
type ResizeHooks interface {
	// OnDragStart records the beginning of a drag on side of node.
	OnDragStart(instance, sessionID, nodeID, side string)

	// OnResize records one resize step. applied is false when constraints
	// stopped the step.
	OnResize(instance, style string, amount float64, applied bool)

	// OnDragEnd records the end of a drag and the number of applied steps.
	OnDragEnd(instance, sessionID string, steps int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCommitHooks is a no-op implementation of CommitHooks.
type NoopCommitHooks struct{}

func (NoopCommitHooks) OnCommitFlush(string, int, int, int, int) {}

// NoopResizeHooks is a no-op implementation of ResizeHooks.
type NoopResizeHooks struct{}

func (NoopResizeHooks) OnDragStart(string, string, string, string) {}
func (NoopResizeHooks) OnResize(string, string, float64, bool)     {}
func (NoopResizeHooks) OnDragEnd(string, string, int)              {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	commitHooks CommitHooks = NoopCommitHooks{}
	resizeHooks ResizeHooks = NoopResizeHooks{}
	hooksMu     sync.RWMutex
)

// SetCommitHooks registers custom commit hooks.
// This should be called once at application startup before any tree is built.
func SetCommitHooks(h CommitHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		commitHooks = h
	}
}

// SetResizeHooks registers custom resize hooks.
// This should be called once at application startup before any tree is built.
func SetResizeHooks(h ResizeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resizeHooks = h
	}
}

// Commits returns the registered commit hooks.
func Commits() CommitHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return commitHooks
}

// Resizes returns the registered resize hooks.
func Resizes() ResizeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resizeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	commitHooks = NoopCommitHooks{}
	resizeHooks = NoopResizeHooks{}
}
