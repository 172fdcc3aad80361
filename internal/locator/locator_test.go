package locator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/everything-mcp/internal/ipc"
	"github.com/usestring/everything-mcp/internal/wire"
)

const testClass = "EVERYTHING_TASKBAR_NOTIFICATION"

func emptyServe(*wire.Request) []byte {
	return wire.EncodeReply(nil, wire.ReplyStats{}, 0)
}

func TestResolveCached_ReusesHandleWithinTTL(t *testing.T) {
	tr := ipc.NewMemTransport(emptyServe)
	l := New(tr, testClass, time.Minute)

	_, ok := l.ResolveCached()
	require.True(t, ok)

	// The service stops, but the cached handle is still inside its
	// validity window.
	tr.SetServe(nil)
	_, ok = l.ResolveCached()
	assert.True(t, ok)
}

func TestResolveCached_RefreshesAfterTTL(t *testing.T) {
	tr := ipc.NewMemTransport(emptyServe)
	l := New(tr, testClass, 30*time.Millisecond)

	_, ok := l.ResolveCached()
	require.True(t, ok)

	tr.SetServe(nil)
	time.Sleep(50 * time.Millisecond)
	_, ok = l.ResolveCached()
	assert.False(t, ok)

	// Absence is cached too, then refreshed once the service is back.
	tr.SetServe(emptyServe)
	_, ok = l.ResolveCached()
	assert.False(t, ok)
	time.Sleep(50 * time.Millisecond)
	_, ok = l.ResolveCached()
	assert.True(t, ok)
}

func TestCheckStatus_NotRunningVersusNotInstalled(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "Everything.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o755))

	down := ipc.NewMemTransport(nil)

	// Executable present, service not answering.
	l := New(down, testClass, time.Minute, WithInstallPaths([]string{exe}))
	assert.Equal(t, StatusNotRunning, l.CheckStatus())

	// No executable anywhere.
	l = New(down, testClass, time.Minute, WithInstallPaths(nil))
	assert.Equal(t, StatusNotInstalled, l.CheckStatus())

	// Service answering.
	l = New(ipc.NewMemTransport(emptyServe), testClass, time.Minute, WithInstallPaths(nil))
	assert.Equal(t, StatusRunning, l.CheckStatus())
}

func TestFindExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "Everything64.exe")
	require.NoError(t, os.WriteFile(exe, []byte("MZ"), 0o755))

	l := New(ipc.NewMemTransport(nil), testClass, time.Minute,
		WithInstallPaths([]string{filepath.Join(dir, "missing.exe"), exe}))

	got, ok := l.FindExecutable()
	require.True(t, ok)
	assert.Equal(t, exe, got)
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, New(ipc.NewMemTransport(emptyServe), testClass, time.Minute).IsAvailable())
	assert.False(t, New(ipc.NewMemTransport(nil), testClass, time.Minute).IsAvailable())
}
