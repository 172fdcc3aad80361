package ipc

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/usestring/everything-mcp/internal/wire"
)

// memEndpointBase keeps in-memory endpoint ids away from zero. Ids are
// allocated monotonically and never reused within a process run, so a very
// late reply can never land on a later page's channel.
const memEndpointBase = 0x4000

// ServeFunc implements a simulated service: it receives one decoded page
// query and returns the raw reply buffer to deliver, or nil to never reply.
type ServeFunc func(req *wire.Request) []byte

// MemTransport is an in-memory Transport with a scriptable service behind
// it. It reproduces the delivery model of the real message queue — replies
// are queued on send and only reach their endpoint when the pump dispatches
// them — so pump and orchestrator behavior can be exercised anywhere.
type MemTransport struct {
	reg    *Registry
	nextID atomic.Uint32
	sent   atomic.Int32

	mu    sync.Mutex
	serve ServeFunc
	queue []memMessage
}

type memMessage struct {
	to   EndpointID
	kind uint32
	buf  []byte
}

// NewMemTransport creates a transport backed by serve. A nil serve means no
// service is running: FindTarget fails and sends are rejected.
func NewMemTransport(serve ServeFunc) *MemTransport {
	return &MemTransport{reg: NewRegistry(), serve: serve}
}

// SetServe swaps the simulated service, or stops it when fn is nil.
func (t *MemTransport) SetServe(fn ServeFunc) {
	t.mu.Lock()
	t.serve = fn
	t.mu.Unlock()
}

// SentQueries reports how many requests reached the simulated service.
func (t *MemTransport) SentQueries() int { return int(t.sent.Load()) }

// Registry exposes the transport's registry for lifecycle assertions.
func (t *MemTransport) Registry() *Registry { return t.reg }

func (t *MemTransport) FindTarget(string) (TargetID, bool) {
	t.mu.Lock()
	ok := t.serve != nil
	t.mu.Unlock()
	if !ok {
		return 0, false
	}
	return 1, true
}

func (t *MemTransport) OpenEndpoint(replyKind uint32) (*Endpoint, error) {
	id := EndpointID(memEndpointBase + t.nextID.Add(1))
	ch := t.reg.Add(id, replyKind)
	return NewEndpoint(id, ch, func() { t.reg.Remove(id) }), nil
}

func (t *MemTransport) SendQuery(_ TargetID, payload []byte) error {
	t.mu.Lock()
	serve := t.serve
	t.mu.Unlock()
	if serve == nil {
		return errors.New("no service target")
	}

	req, err := wire.DecodeRequest(payload)
	if err != nil {
		return err
	}
	t.sent.Add(1)

	// The real send blocks until the target's handler returns, so the
	// service runs synchronously here too; its reply is queued and stays
	// undelivered until the pump runs.
	reply := serve(req)
	if reply == nil {
		return nil
	}
	t.mu.Lock()
	t.queue = append(t.queue, memMessage{
		to:   EndpointID(req.ReplyEndpoint),
		kind: req.ReplyKind,
		buf:  reply,
	})
	t.mu.Unlock()
	return nil
}

func (t *MemTransport) PumpOne() bool {
	t.mu.Lock()
	if len(t.queue) == 0 {
		t.mu.Unlock()
		return false
	}
	m := t.queue[0]
	t.queue = t.queue[1:]
	t.mu.Unlock()

	t.reg.Route(m.to, m.kind, m.buf)
	return true
}

// ServeStatic returns a ServeFunc answering queries from a fixed result set,
// honoring offset and max_results the way the real service pages.
func ServeStatic(items []wire.ReplyItem) ServeFunc {
	var folders, files uint32
	for _, it := range items {
		if it.Flags&(wire.ItemFolder|wire.ItemDrive|wire.ItemRoot) != 0 {
			folders++
		} else {
			files++
		}
	}
	stats := wire.ReplyStats{
		TotalFolders: folders,
		TotalFiles:   files,
		TotalItems:   uint32(len(items)),
	}
	return func(req *wire.Request) []byte {
		start := min(int(req.Offset), len(items))
		end := min(start+int(req.MaxResults), len(items))
		return wire.EncodeReply(items[start:end], stats, req.Offset)
	}
}
