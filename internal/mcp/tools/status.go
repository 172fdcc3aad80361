package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusInput is the input for everything_status.
type StatusInput struct{}

// StatusOutput is the output for everything_status.
type StatusOutput struct {
	Running    bool   `json:"running"`
	Reason     string `json:"reason,omitempty"`
	Executable string `json:"executable,omitempty"`
	Version    string `json:"version,omitempty"`
}

// ToolStatus reports whether the Everything service is reachable and, when
// it is not, whether that is because it is stopped or not installed at all.
func ToolStatus(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input StatusInput) (*sdkmcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input StatusInput) (*sdkmcp.CallToolResult, StatusOutput, error) {
		running, reason := d.Client.CheckStatus()

		out := StatusOutput{Running: running}
		if !running {
			out.Reason = reason.String()
		}
		if exe, ok := d.Client.FindExecutable(); ok {
			out.Executable = exe
		}
		if v, ok := d.Client.Version(); ok {
			out.Version = v
		}
		return nil, out, nil
	}
}
