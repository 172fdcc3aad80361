package ipc

import "sync"

// Endpoint is a single-reply receiving endpoint. The orchestrator creates a
// fresh one immediately before each page request and closes it when the page
// completes, fails, times out, or is cancelled — every exit path releases
// it. Recreating per page trades a little overhead for a fresh channel with
// no stale-delivery races.
type Endpoint struct {
	id      EndpointID
	replies <-chan []byte
	destroy func()
	once    sync.Once
}

// NewEndpoint wraps an allocated receiving identifier. destroy must remove
// the registry entry and release the OS resource; it runs exactly once.
func NewEndpoint(id EndpointID, replies <-chan []byte, destroy func()) *Endpoint {
	return &Endpoint{id: id, replies: replies, destroy: destroy}
}

// ID returns the identifier the service should address the reply to.
func (e *Endpoint) ID() EndpointID { return e.id }

// Replies returns the one-shot delivery channel. The channel is closed when
// the endpoint is destroyed.
func (e *Endpoint) Replies() <-chan []byte { return e.replies }

// Close destroys the endpoint and removes its registry entry. Safe to call
// more than once.
func (e *Endpoint) Close() {
	e.once.Do(e.destroy)
}
