// Package locator finds the Everything service's receiving endpoint and
// answers availability questions about the installation.
package locator

import (
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/everything-mcp/internal/ipc"
)

// Status classifies the reachability of the service.
type Status int

const (
	// StatusRunning means the service's endpoint answered the lookup.
	StatusRunning Status = iota
	// StatusNotRunning means the executable is installed but the service
	// is not listening.
	StatusNotRunning
	// StatusNotInstalled means no executable was found at any of the
	// conventional install locations.
	StatusNotInstalled
)

// cached is one resolution outcome. Absence is cached too, so a stopped
// service is re-probed at most once per TTL window under rapid queries.
type cached struct {
	target ipc.TargetID
	ok     bool
}

// Locator resolves the service window by its well-known class name, caching
// the handle for a short validity window. Rapid successive queries reuse the
// cached handle; expiry forces an unconditional refresh.
type Locator struct {
	transport    ipc.Transport
	class        string
	cache        *expirable.LRU[string, cached]
	group        singleflight.Group
	installPaths []string
}

// Option customizes a Locator.
type Option func(*Locator)

// WithInstallPaths overrides the probed executable locations.
func WithInstallPaths(paths []string) Option {
	return func(l *Locator) {
		l.installPaths = paths
	}
}

// New creates a locator over the given transport. ttl bounds how long a
// resolved handle (or a resolved absence) stays valid.
func New(tr ipc.Transport, class string, ttl time.Duration, opts ...Option) *Locator {
	l := &Locator{
		transport:    tr,
		class:        class,
		cache:        expirable.NewLRU[string, cached](1, nil, ttl),
		installPaths: defaultInstallPaths(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve looks the service endpoint up directly, bypassing the cache.
func (l *Locator) Resolve() (ipc.TargetID, bool) {
	return l.transport.FindTarget(l.class)
}

// ResolveCached returns the cached handle while it is fresh and re-resolves
// otherwise, refreshing the cache unconditionally — including to "absent",
// so a service that stopped is noticed within one TTL. Concurrent
// re-resolutions collapse into a single lookup.
func (l *Locator) ResolveCached() (ipc.TargetID, bool) {
	if c, ok := l.cache.Get(l.class); ok {
		return c.target, c.ok
	}
	v, _, _ := l.group.Do(l.class, func() (any, error) {
		target, ok := l.transport.FindTarget(l.class)
		c := cached{target: target, ok: ok}
		l.cache.Add(l.class, c)
		return c, nil
	})
	c := v.(cached)
	return c.target, c.ok
}

// IsAvailable reports whether the service is answering.
func (l *Locator) IsAvailable() bool {
	_, ok := l.ResolveCached()
	return ok
}

// CheckStatus distinguishes a service that is installed but not running from
// one that is absent entirely, so callers can surface actionable guidance.
func (l *Locator) CheckStatus() Status {
	if l.IsAvailable() {
		return StatusRunning
	}
	if _, ok := l.FindExecutable(); ok {
		return StatusNotRunning
	}
	return StatusNotInstalled
}

// FindExecutable probes the conventional install locations and returns the
// first executable found.
func (l *Locator) FindExecutable() (string, bool) {
	for _, p := range l.installPaths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Version reads the installed executable's version metadata. Best effort:
// absent off-Windows and when the executable is missing.
func (l *Locator) Version() (string, bool) {
	path, ok := l.FindExecutable()
	if !ok {
		return "", false
	}
	return executableVersion(path)
}

func defaultInstallPaths() []string {
	var paths []string
	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "LOCALAPPDATA"} {
		dir := os.Getenv(env)
		if dir == "" {
			continue
		}
		paths = append(paths,
			filepath.Join(dir, "Everything", "Everything.exe"),
			filepath.Join(dir, "Everything", "Everything64.exe"),
		)
	}
	return paths
}
