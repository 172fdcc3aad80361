package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "everything_search",
		Description: "Search the local filesystem through the Everything index. Returns matching files and folders with full paths, in the service's own order. Prefix the query with 'regex:' for regular-expression matching.",
	}, ToolSearch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "everything_status",
		Description: "Check whether the Everything indexing service is installed and running, with the executable path and version when available.",
	}, ToolStatus(d))
}
