package everything

import "github.com/cockroachdb/errors"

// Sentinel errors returned by the client. Wrapped variants carry call-site
// detail; test with errors.Is.
var (
	// ErrNotInstalled means no Everything executable was found at any
	// conventional install location.
	ErrNotInstalled = errors.New("everything: service not installed")

	// ErrServiceNotRunning means the service's receiving endpoint could
	// not be located.
	ErrServiceNotRunning = errors.New("everything: service not running")

	// ErrTimeout means a page's reply did not arrive within the per-page
	// timeout. A slow page fails the whole search; there is no automatic
	// retry at this layer.
	ErrTimeout = errors.New("everything: search timed out")

	// ErrIPCFailed covers transport failures and structurally corrupt
	// replies.
	ErrIPCFailed = errors.New("everything: ipc failure")

	// ErrInvalidQuery means the query text was empty after trimming. It is
	// returned before any I/O happens.
	ErrInvalidQuery = errors.New("everything: invalid query")

	// ErrCanceled means the caller's context was cancelled. Deliberately
	// distinct from ErrTimeout.
	ErrCanceled = errors.New("everything: search canceled")
)
