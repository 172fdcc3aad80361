// Package ipc provides the message-passing machinery between the client and
// the Everything service: receiving endpoints, the process-wide delivery
// registry, the cooperative message pump, and the OS transport boundary.
package ipc

import (
	"log/slog"
	"sync"
)

// EndpointID identifies a process-local receiving endpoint. On Windows it is
// the message-only window handle truncated to 32 bits, which is exactly what
// the wire request header carries.
type EndpointID uint32

// Registry maps live endpoints to their one-shot delivery channels. One
// registry is shared by every in-flight search in the process. All critical
// sections are short — insert, remove, route — and nothing blocking runs
// while the lock is held.
type Registry struct {
	mu      sync.Mutex
	entries map[EndpointID]regEntry
}

type regEntry struct {
	kind uint32
	ch   chan []byte
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[EndpointID]regEntry)}
}

// DefaultRegistry is the process-wide registry used by the platform
// transport, created on first use.
var DefaultRegistry = sync.OnceValue(NewRegistry)

// Add registers an endpoint expecting a single reply of the given kind and
// returns its delivery channel.
func (r *Registry) Add(id EndpointID, kind uint32) <-chan []byte {
	ch := make(chan []byte, 1)
	r.mu.Lock()
	r.entries[id] = regEntry{kind: kind, ch: ch}
	r.mu.Unlock()
	return ch
}

// Remove drops the endpoint's entry and closes its channel. A waiter still
// blocked on the channel observes the close as a broken delivery.
func (r *Registry) Remove(id EndpointID) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if ok {
		close(e.ch)
	}
}

// Route hands a delivered message to its endpoint's channel and reports
// whether anyone took it. A delivery for an unknown endpoint — typically a
// reply arriving after its page already timed out and tore the endpoint
// down — is dropped. So is a message whose kind does not match what the
// endpoint registered for; that is default handling, not an error.
//
// The send happens under the lock so a concurrent Remove cannot close the
// channel out from under it; the channel has capacity one, so the send never
// blocks.
func (r *Registry) Route(id EndpointID, kind uint32, buf []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		slog.Debug("dropping delivery for unknown endpoint", "endpoint", id, "kind", kind)
		return false
	}
	if e.kind != kind {
		return false
	}
	select {
	case e.ch <- buf:
		return true
	default:
		slog.Warn("dropping duplicate delivery", "endpoint", id, "kind", kind)
		return false
	}
}

// Len reports the number of live endpoints.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
