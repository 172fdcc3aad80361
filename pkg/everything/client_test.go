package everything

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/everything-mcp/internal/config"
	"github.com/usestring/everything-mcp/internal/ipc"
	"github.com/usestring/everything-mcp/internal/wire"
)

func testConfig() *config.Config {
	return &config.Config{
		WindowClass:    "EVERYTHING_TASKBAR_NOTIFICATION",
		ReplyKind:      wire.DefaultReplyKind,
		PageSize:       config.DefaultPageSizeValue,
		MaxResults:     config.DefaultMaxResultsValue,
		PageTimeout:    5 * time.Second,
		HandleCacheTTL: 5 * time.Second,
		PumpIdleSleep:  time.Millisecond,
	}
}

func corpus(n int) []wire.ReplyItem {
	items := make([]wire.ReplyItem, n)
	for i := range items {
		items[i] = wire.ReplyItem{
			Name: fmt.Sprintf("file-%03d.txt", i),
			Path: `C:\data`,
		}
	}
	return items
}

func newTestClient(tr ipc.Transport) *Client {
	return New(WithTransport(tr), WithConfig(testConfig()))
}

func TestSearch_PaginatesToExhaustion(t *testing.T) {
	tr := ipc.NewMemTransport(ipc.ServeStatic(corpus(45)))
	c := newTestClient(tr)

	resp, err := c.Search(context.Background(), "file",
		WithMaxResults(50), WithPageSize(20))
	require.NoError(t, err)

	// 20 + 20 + 5: the short third page ends pagination.
	assert.Equal(t, 3, tr.SentQueries())
	require.Len(t, resp.Results, 45)
	assert.Equal(t, 45, resp.Total)
	assert.Equal(t, `C:\data\file-000.txt`, resp.Results[0].FullPath)
	assert.Equal(t, `C:\data\file-044.txt`, resp.Results[44].FullPath)
}

func TestSearch_TruncatesAtMaxResults(t *testing.T) {
	tr := ipc.NewMemTransport(ipc.ServeStatic(corpus(100)))
	c := newTestClient(tr)

	resp, err := c.Search(context.Background(), "file",
		WithMaxResults(30), WithPageSize(20))
	require.NoError(t, err)

	assert.Equal(t, 2, tr.SentQueries())
	assert.Len(t, resp.Results, 30)
	// Total still reflects the full match count from the first page.
	assert.Equal(t, 100, resp.Total)
}

func TestSearch_BatchCallbackSequence(t *testing.T) {
	tr := ipc.NewMemTransport(ipc.ServeStatic(corpus(45)))
	c := newTestClient(tr)

	type call struct{ batch, total, accumulated int }
	var calls []call
	_, err := c.Search(context.Background(), "file",
		WithMaxResults(50), WithPageSize(20),
		WithBatchFunc(func(batch []Result, total, accumulated int) {
			calls = append(calls, call{len(batch), total, accumulated})
		}))
	require.NoError(t, err)

	assert.Equal(t, []call{
		{20, 45, 20},
		{20, 45, 40},
		{5, 45, 45},
	}, calls)
}

func TestSearch_EmptyResultSet(t *testing.T) {
	tr := ipc.NewMemTransport(ipc.ServeStatic(nil))
	c := newTestClient(tr)

	resp, err := c.Search(context.Background(), "no such file")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Total)
	assert.Equal(t, 1, tr.SentQueries())
}

func TestSearch_EmptyQueryRejectedBeforeResolution(t *testing.T) {
	// No service behind the transport: reaching resolution would yield
	// ErrServiceNotRunning, so ErrInvalidQuery proves validation came
	// first.
	c := newTestClient(ipc.NewMemTransport(nil))

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := c.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrInvalidQuery, "query %q", q)
	}
}

func TestSearch_ServiceNotRunning(t *testing.T) {
	c := newTestClient(ipc.NewMemTransport(nil))
	_, err := c.Search(context.Background(), "file")
	assert.ErrorIs(t, err, ErrServiceNotRunning)
}

func TestSearch_CancelledBeforeFirstPage(t *testing.T) {
	tr := ipc.NewMemTransport(ipc.ServeStatic(corpus(10)))
	c := newTestClient(tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, "file")
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Zero(t, tr.SentQueries(), "no page may be sent after cancellation")
}

func TestSearch_CancelledMidWait(t *testing.T) {
	// Service never replies; cancellation must win over the page timeout.
	tr := ipc.NewMemTransport(func(*wire.Request) []byte { return nil })
	c := newTestClient(tr)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Search(ctx, "file", WithPageTimeout(5*time.Second))
	assert.ErrorIs(t, err, ErrCanceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestSearch_PageTimeout(t *testing.T) {
	tr := ipc.NewMemTransport(func(*wire.Request) []byte { return nil })
	c := newTestClient(tr)

	_, err := c.Search(context.Background(), "file", WithPageTimeout(30*time.Millisecond))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSearch_CorruptReplyIsIPCFailure(t *testing.T) {
	tr := ipc.NewMemTransport(func(*wire.Request) []byte {
		return []byte{1, 2, 3} // shorter than the reply header
	})
	c := newTestClient(tr)

	_, err := c.Search(context.Background(), "file")
	assert.ErrorIs(t, err, ErrIPCFailed)
}

func TestSearch_EndpointsReleasedOnEveryPath(t *testing.T) {
	tests := []struct {
		name  string
		serve ipc.ServeFunc
	}{
		{"success", ipc.ServeStatic(corpus(5))},
		{"timeout", func(*wire.Request) []byte { return nil }},
		{"corrupt reply", func(*wire.Request) []byte { return []byte{0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := ipc.NewMemTransport(tt.serve)
			c := newTestClient(tr)
			_, _ = c.Search(context.Background(), "file", WithPageTimeout(30*time.Millisecond))
			assert.Zero(t, tr.Registry().Len(), "endpoint left registered")
		})
	}
}

func TestSearch_ResultFields(t *testing.T) {
	tr := ipc.NewMemTransport(ipc.ServeStatic([]wire.ReplyItem{
		{Name: "docs", Path: `C:\`, Flags: wire.ItemFolder},
		{Name: "notes.txt", Path: "D:", Flags: 0},
	}))
	c := newTestClient(tr)

	resp, err := c.Search(context.Background(), "notes")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "docs", resp.Results[0].Name)
	assert.Equal(t, `C:\docs`, resp.Results[0].FullPath)
	assert.True(t, resp.Results[0].IsFolder)

	assert.Equal(t, `D:\notes.txt`, resp.Results[1].FullPath)
	assert.False(t, resp.Results[1].IsFolder)
}

func TestQueryFlags(t *testing.T) {
	text, flags := queryFlags("regex:^foo.*$", true)
	assert.Equal(t, "^foo.*$", text)
	assert.Equal(t, wire.FlagRegex, flags, "whole-word must not combine with regex")

	text, flags = queryFlags("plain", true)
	assert.Equal(t, "plain", text)
	assert.Equal(t, wire.FlagWholeWord, flags)

	_, flags = queryFlags("plain", false)
	assert.Zero(t, flags)
}

func TestSearch_RegexQuerySentWithoutPrefix(t *testing.T) {
	var got *wire.Request
	tr := ipc.NewMemTransport(func(req *wire.Request) []byte {
		got = req
		return wire.EncodeReply(nil, wire.ReplyStats{}, 0)
	})
	c := newTestClient(tr)

	_, err := c.Search(context.Background(), "regex:foo.*bar", WithWholeWord(true))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "foo.*bar", got.Query)
	assert.Equal(t, wire.FlagRegex, got.Flags)
}

func TestCheckStatus_MapsLocatorStatus(t *testing.T) {
	c := newTestClient(ipc.NewMemTransport(ipc.ServeStatic(nil)))
	ok, reason := c.CheckStatus()
	assert.True(t, ok)
	assert.Equal(t, ReasonNone, reason)

	// Which negative reason comes back depends on whether an Everything
	// executable exists on the host; either way it must not be ReasonNone.
	c = newTestClient(ipc.NewMemTransport(nil))
	ok, reason = c.CheckStatus()
	assert.False(t, ok)
	assert.NotEqual(t, ReasonNone, reason)
}

func TestSearch_WrapsDetail(t *testing.T) {
	c := newTestClient(ipc.NewMemTransport(nil))
	_, err := c.Search(context.Background(), " ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuery))
	assert.Contains(t, err.Error(), "empty query")
}
