package ipc

// TargetID identifies the external service's receiving endpoint.
type TargetID uintptr

// Transport is the OS message-passing boundary. The Windows implementation
// speaks real window messages; MemTransport reproduces the same delivery
// model in memory for tests and non-Windows development.
type Transport interface {
	// FindTarget locates the service's receiving endpoint by its
	// well-known class name.
	FindTarget(class string) (TargetID, bool)

	// OpenEndpoint creates a fresh receiving endpoint registered for
	// replies of the given envelope kind.
	OpenEndpoint(replyKind uint32) (*Endpoint, error)

	// SendQuery delivers an encoded request to the target. The call is
	// synchronous: it blocks until the target process's handler returns.
	SendQuery(target TargetID, payload []byte) error

	// PumpOne dispatches at most one pending incoming message and reports
	// whether there was one. It never blocks.
	PumpOne() bool
}
