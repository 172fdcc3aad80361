// Package tools contains MCP tool implementations backed by the Everything
// client.
package tools

import (
	"github.com/usestring/everything-mcp/internal/config"
	"github.com/usestring/everything-mcp/pkg/everything"
)

// Deps contains the dependencies available to the tools.
type Deps struct {
	Client *everything.Client
	Config *config.Config
}
