//go:build windows

package ipc

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"

	"github.com/usestring/everything-mcp/internal/wire"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procFindWindowW      = user32.NewProc("FindWindowW")
	procPeekMessageW     = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procSendMessageW     = user32.NewProc("SendMessageW")
)

const (
	wmCopyData = 0x004A
	pmRemove   = 0x0001

	// HWND_MESSAGE parents a window into the message-only hierarchy: it
	// can receive messages but never paints.
	hwndMessage = ^uintptr(2)

	replyWindowClass = "EverythingMCPReply"
)

type copyDataStruct struct {
	dwData uintptr
	cbData uint32
	lpData unsafe.Pointer
}

type point struct {
	x, y int32
}

type message struct {
	hwnd    uintptr
	message uint32
	wparam  uintptr
	lparam  uintptr
	time    uint32
	pt      point
}

type wndClassExW struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     windows.Handle
	hIcon         windows.Handle
	hCursor       windows.Handle
	hbrBackground windows.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       windows.Handle
}

// WindowTransport speaks the real protocol: one message-only window per
// endpoint receives WM_COPYDATA replies and routes them through the shared
// registry; requests go out via SendMessage to the service's window.
type WindowTransport struct {
	reg       *Registry
	classOnce sync.Once
	classErr  error
	className *uint16
}

// NewWindowTransport returns a transport wired to the process-wide registry.
func NewWindowTransport() *WindowTransport {
	return &WindowTransport{reg: DefaultRegistry()}
}

// NewPlatformTransport returns the native transport for this platform.
func NewPlatformTransport() Transport { return NewWindowTransport() }

func (t *WindowTransport) wndProc(hwnd, msg, wparam, lparam uintptr) uintptr {
	if msg == wmCopyData && lparam != 0 {
		cds := (*copyDataStruct)(unsafe.Pointer(lparam))
		// The buffer belongs to the sender and is only valid for the
		// duration of this call; copy before routing.
		var buf []byte
		if cds.cbData > 0 && cds.lpData != nil {
			buf = append([]byte(nil), unsafe.Slice((*byte)(cds.lpData), cds.cbData)...)
		}
		if t.reg.Route(EndpointID(uint32(hwnd)), uint32(cds.dwData), buf) {
			return 1
		}
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(hwnd, msg, wparam, lparam)
	return ret
}

func (t *WindowTransport) ensureClass() error {
	t.classOnce.Do(func() {
		cls, err := windows.UTF16PtrFromString(replyWindowClass)
		if err != nil {
			t.classErr = err
			return
		}
		wc := wndClassExW{
			lpfnWndProc:   windows.NewCallback(t.wndProc),
			lpszClassName: cls,
		}
		wc.cbSize = uint32(unsafe.Sizeof(wc))
		atom, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
		if atom == 0 {
			t.classErr = errors.Wrap(callErr, "registering reply window class")
			return
		}
		t.className = cls
	})
	return t.classErr
}

func (t *WindowTransport) FindTarget(class string) (TargetID, bool) {
	cls, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0, false
	}
	hwnd, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(cls)), 0)
	return TargetID(hwnd), hwnd != 0
}

func (t *WindowTransport) OpenEndpoint(replyKind uint32) (*Endpoint, error) {
	if err := t.ensureClass(); err != nil {
		return nil, err
	}
	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(t.className)),
		0,
		0,
		0, 0, 0, 0,
		hwndMessage,
		0, 0, 0,
	)
	if hwnd == 0 {
		return nil, errors.Wrap(callErr, "creating reply window")
	}

	id := EndpointID(uint32(hwnd))
	ch := t.reg.Add(id, replyKind)
	return NewEndpoint(id, ch, func() {
		t.reg.Remove(id)
		procDestroyWindow.Call(hwnd)
	}), nil
}

func (t *WindowTransport) SendQuery(target TargetID, payload []byte) error {
	cds := copyDataStruct{
		dwData: wire.CopyDataQueryW,
		cbData: uint32(len(payload)),
	}
	if len(payload) > 0 {
		cds.lpData = unsafe.Pointer(&payload[0])
	}
	ret, _, _ := procSendMessageW.Call(
		uintptr(target),
		wmCopyData,
		0,
		uintptr(unsafe.Pointer(&cds)),
	)
	runtime.KeepAlive(payload)
	if ret == 0 {
		return errors.New("service did not accept the query")
	}
	return nil
}

func (t *WindowTransport) PumpOne() bool {
	var m message
	// PM_REMOVE without a filter also gives the thread a chance to
	// dispatch WM_COPYDATA sent from the service's thread.
	ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
	if ret == 0 {
		return false
	}
	procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
	procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	return true
}
