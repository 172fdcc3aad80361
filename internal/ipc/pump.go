package ipc

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultIdleSleep is how long AwaitReply naps when no message is pending
// before re-checking cancellation.
const DefaultIdleSleep = 5 * time.Millisecond

var (
	// ErrReplyTimeout means the per-page timeout elapsed with no reply.
	ErrReplyTimeout = errors.New("timed out waiting for reply")

	// ErrEndpointClosed means the delivery channel was torn down while a
	// reply was still being awaited.
	ErrEndpointClosed = errors.New("endpoint closed while awaiting reply")
)

// AwaitReply cooperatively pumps the transport until the endpoint's reply
// arrives, the timeout elapses, or ctx is cancelled. The loop checks ctx
// first on every iteration and sleeps only when no message was pending, so
// cancellation is observed with at worst one idle-sleep of latency. There is
// no true OS blocking anywhere in the wait.
func AwaitReply(ctx context.Context, tr Transport, ep *Endpoint, timeout, idle time.Duration) ([]byte, error) {
	if idle <= 0 {
		idle = DefaultIdleSleep
	}
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		select {
		case buf, ok := <-ep.Replies():
			if !ok {
				return nil, ErrEndpointClosed
			}
			return buf, nil
		default:
		}
		if !time.Now().Before(deadline) {
			return nil, ErrReplyTimeout
		}
		if tr.PumpOne() {
			continue
		}
		time.Sleep(idle)
	}
}
