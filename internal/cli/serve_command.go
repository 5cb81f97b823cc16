package cli

import (
	"context"
	"fmt"
	"io"

	"task-tracker/internal/config"
	"task-tracker/internal/repository"
	"task-tracker/internal/server"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	repo   repository.TaskRepository
	config *config.Config
	out    io.Writer
}

// NewServeCommand creates a handler serving repo over HTTP
func NewServeCommand(repo repository.TaskRepository, cfg *config.Config, out io.Writer) *ServeCommand {
	return &ServeCommand{repo: repo, config: cfg, out: out}
}

// Execute serves until ctx is cancelled
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	srv := server.New(c.repo, c.config.Server.BasePath)
	fmt.Fprintf(c.out, "Serving %s tasks on %s%s\n", c.config.Server.Backend, c.config.Server.Addr, c.config.Server.BasePath)
	return srv.Run(ctx, c.config.Server.Addr)
}
