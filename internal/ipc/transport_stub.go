//go:build !windows

package ipc

import "github.com/cockroachdb/errors"

// NewPlatformTransport returns the native transport for this platform.
// There is no service to talk to off-Windows; the stub reports the target as
// absent and refuses to open endpoints. Use MemTransport for development.
func NewPlatformTransport() Transport { return stubTransport{} }

type stubTransport struct{}

func (stubTransport) FindTarget(string) (TargetID, bool) { return 0, false }

func (stubTransport) OpenEndpoint(uint32) (*Endpoint, error) {
	return nil, errors.New("window message transport is only available on windows")
}

func (stubTransport) SendQuery(TargetID, []byte) error {
	return errors.New("window message transport is only available on windows")
}

func (stubTransport) PumpOne() bool { return false }
