package cli

import (
	"context"
	"strings"

	"task-tracker/internal/domain"
)

// AddOptions holds the flags of the add command
type AddOptions struct {
	Category string
	Priority string
	Deadline string
}

// AddCommand handles the add command
type AddCommand struct {
	app  *App
	opts AddOptions
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App, opts AddOptions) *AddCommand {
	return &AddCommand{app: app, opts: opts}
}

// Execute creates a task named by the joined arguments
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	draft := domain.Draft{
		Name:     strings.Join(args, " "),
		Category: strings.TrimSpace(c.opts.Category),
		Priority: domain.PriorityMedium,
	}
	if c.opts.Priority != "" {
		priority, err := parsePriorityFlag(c.opts.Priority)
		if err != nil {
			return err
		}
		draft.Priority = priority
	}
	if c.opts.Deadline != "" {
		deadline, err := c.app.parseDeadline(c.opts.Deadline)
		if err != nil {
			return err
		}
		draft.Deadline = &deadline
	}

	if err := c.app.load(ctx); err != nil {
		return err
	}

	task, err := c.app.ctrl.Create(ctx, draft)
	if err != nil {
		return c.app.errors.Handle("add task", err)
	}

	c.app.printf("Added task %s: %s\n", task.ID, task.Name)
	return nil
}
