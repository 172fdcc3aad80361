// Package everything is a client for the voidtools Everything file-indexing
// service's local IPC search protocol.
//
// Everything runs as an independent process on the same machine and answers
// search queries over window messages: the client sends an encoded request
// into the service's window and receives the reply as a copy-data message on
// a window of its own. Search drives one request/reply round trip per page,
// accumulating results up to the caller's maximum, and turns the untrusted
// reply buffers into structured results.
//
// The API is synchronous and blocking-style from the caller's point of view;
// internally the client polls cooperatively so cancellation is observed
// mid-wait. No background goroutines are started — the caller decides what
// runs where.
package everything

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/usestring/everything-mcp/internal/config"
	"github.com/usestring/everything-mcp/internal/ipc"
	"github.com/usestring/everything-mcp/internal/locator"
	"github.com/usestring/everything-mcp/internal/wire"
)

// Client drives paginated searches against the Everything service.
// Concurrent Search calls are safe but uncoordinated: each call creates its
// own endpoints, and the locator cache and endpoint registry are the only
// shared state.
type Client struct {
	cfg       *config.Config
	transport ipc.Transport
	locator   *locator.Locator
}

// Option configures a Client.
type Option func(*Client)

// WithTransport substitutes the message transport. Used by tests and
// non-Windows development with ipc.MemTransport.
func WithTransport(tr ipc.Transport) Option {
	return func(c *Client) {
		c.transport = tr
	}
}

// WithConfig overrides the environment-derived configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) {
		c.cfg = cfg
	}
}

// New creates a client. Without options it loads configuration from the
// environment and uses the platform transport.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg == nil {
		c.cfg = config.Load()
	}
	if c.transport == nil {
		c.transport = ipc.NewPlatformTransport()
	}
	c.locator = locator.New(c.transport, c.cfg.WindowClass, c.cfg.HandleCacheTTL)
	return c
}

// Search runs a paginated query and returns the accumulated results.
//
// The query is rejected before any I/O if it is empty after trimming. A
// query starting with "regex:" is transmitted without the prefix and with
// the regex wire flag set. Cancelling ctx surfaces as ErrCanceled at the
// next checkpoint, at worst one pump interval away.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.Wrap(ErrInvalidQuery, "empty query text")
	}

	cfg := searchConfig{
		maxResults:  c.cfg.MaxResults,
		pageSize:    c.cfg.PageSize,
		pageTimeout: c.cfg.PageTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Mark(err, ErrCanceled)
	}
	target, ok := c.locator.ResolveCached()
	if !ok {
		return nil, ErrServiceNotRunning
	}

	text, flags := queryFlags(query, cfg.wholeWord)
	slog.Debug("starting search",
		slog.String("query", text),
		slog.Int("max_results", cfg.maxResults),
		slog.Int("page_size", cfg.pageSize),
	)

	var (
		results   []Result
		total     int
		haveTotal bool
	)
	for len(results) < cfg.maxResults {
		if err := ctx.Err(); err != nil {
			return nil, errors.Mark(err, ErrCanceled)
		}
		limit := min(cfg.maxResults-len(results), cfg.pageSize)
		batch, reply, err := c.fetchPage(ctx, target, text, flags, len(results), limit, cfg.pageTimeout)
		if err != nil {
			return nil, err
		}
		if !haveTotal {
			total = int(reply.TotalItems)
			haveTotal = true
		}
		if len(batch) > limit {
			batch = batch[:limit]
		}
		results = append(results, batch...)
		if cfg.onBatch != nil {
			cfg.onBatch(batch, total, len(results))
		}
		if len(batch) == 0 || len(batch) < limit || reply.BatchItems == 0 {
			break
		}
	}

	slog.Debug("search finished", slog.Int("results", len(results)), slog.Int("total", total))
	return &Response{Results: results, Total: total}, nil
}

// fetchPage runs one request/reply round trip. The endpoint created for the
// page is destroyed on every exit path.
func (c *Client) fetchPage(ctx context.Context, target ipc.TargetID, query string, flags uint32, offset, limit int, timeout time.Duration) ([]Result, *wire.Reply, error) {
	ep, err := c.transport.OpenEndpoint(c.cfg.ReplyKind)
	if err != nil {
		return nil, nil, errors.Mark(err, ErrIPCFailed)
	}
	defer ep.Close()

	payload := wire.EncodeRequest(wire.Request{
		ReplyEndpoint: uint32(ep.ID()),
		ReplyKind:     c.cfg.ReplyKind,
		Flags:         flags,
		Offset:        uint32(offset),
		MaxResults:    uint32(limit),
		Query:         query,
	})

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Mark(err, ErrCanceled)
	}
	if err := c.transport.SendQuery(target, payload); err != nil {
		return nil, nil, errors.Mark(err, ErrIPCFailed)
	}
	slog.Debug("page request sent", slog.Uint64("endpoint", uint64(ep.ID())), slog.Int("offset", offset), slog.Int("limit", limit))

	buf, err := ipc.AwaitReply(ctx, c.transport, ep, timeout, c.cfg.PumpIdleSleep)
	switch {
	case err == nil:
	case errors.Is(err, ipc.ErrReplyTimeout):
		return nil, nil, errors.Mark(err, ErrTimeout)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return nil, nil, errors.Mark(err, ErrCanceled)
	default:
		return nil, nil, errors.Mark(err, ErrIPCFailed)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Mark(err, ErrCanceled)
	}
	reply, err := wire.DecodeReply(buf)
	if err != nil {
		return nil, nil, errors.Mark(err, ErrIPCFailed)
	}

	batch := make([]Result, 0, len(reply.Items))
	for _, it := range reply.Items {
		batch = append(batch, Result{
			Name:     it.Name,
			FullPath: it.FullPath,
			IsFolder: it.IsFolder(),
		})
	}
	return batch, reply, nil
}

// queryFlags derives the wire search flags and the transmitted text. The
// whole-word flag is only set for non-regex queries.
func queryFlags(query string, wholeWord bool) (string, uint32) {
	var flags uint32
	if rest, ok := strings.CutPrefix(query, RegexPrefix); ok {
		return rest, wire.FlagRegex
	}
	if wholeWord {
		flags |= wire.FlagWholeWord
	}
	return query, flags
}

// IsAvailable reports whether the service is answering right now (within
// the locator's short cache window).
func (c *Client) IsAvailable() bool {
	return c.locator.IsAvailable()
}

// CheckStatus reports availability plus a reason when unavailable.
func (c *Client) CheckStatus() (bool, StatusReason) {
	switch c.locator.CheckStatus() {
	case locator.StatusRunning:
		return true, ReasonNone
	case locator.StatusNotRunning:
		return false, ReasonServiceNotRunning
	default:
		return false, ReasonNotInstalled
	}
}

// FindExecutable returns the installed service executable, if any.
func (c *Client) FindExecutable() (string, bool) {
	return c.locator.FindExecutable()
}

// Version reads the installed executable's version metadata, best effort.
func (c *Client) Version() (string, bool) {
	return c.locator.Version()
}
