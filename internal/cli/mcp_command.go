package cli

import (
	"context"

	mcpserver "task-tracker/internal/mcp"
)

// MCPCommand handles the mcp command
type MCPCommand struct {
	app     *App
	version string
}

// NewMCPCommand creates a handler exposing the app's controller as MCP tools
func NewMCPCommand(app *App, version string) *MCPCommand {
	return &MCPCommand{app: app, version: version}
}

// Execute serves MCP on stdio until the client disconnects
func (c *MCPCommand) Execute(ctx context.Context, args []string) error {
	return mcpserver.Serve(mcpserver.NewServer(c.app.ctrl, c.app.loc, c.version))
}
