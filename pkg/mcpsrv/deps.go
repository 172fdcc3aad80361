package mcpsrv

import (
	"github.com/usestring/everything-mcp/internal/config"
	"github.com/usestring/everything-mcp/pkg/everything"
)

// Deps contains the dependencies available to custom tools registered with
// WithDepsTool.
type Deps struct {
	// Client is the Everything IPC client.
	Client *everything.Client

	// Config holds the server configuration loaded from the environment.
	Config *config.Config
}
