package cli

import (
	"context"
	"strings"
)

// EditOptions holds the flags of the edit command. Nil fields were not
// given and keep the task's current value.
type EditOptions struct {
	Name      *string
	Category  *string
	Priority  *string
	Deadline  *string
	Completed *bool
}

// EditCommand handles the edit command
type EditCommand struct {
	app  *App
	opts EditOptions
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App, opts EditOptions) *EditCommand {
	return &EditCommand{app: app, opts: opts}
}

// Execute updates the task whose id is the single argument
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.load(ctx); err != nil {
		return err
	}

	id := args[0]
	current, err := c.app.task(id)
	if err != nil {
		return err
	}

	draft := current.Draft()
	if c.opts.Name != nil {
		draft.Name = *c.opts.Name
	}
	if c.opts.Category != nil {
		draft.Category = strings.TrimSpace(*c.opts.Category)
	}
	if c.opts.Priority != nil {
		priority, err := parsePriorityFlag(*c.opts.Priority)
		if err != nil {
			return err
		}
		draft.Priority = priority
	}
	if c.opts.Deadline != nil {
		deadline, err := c.app.parseDeadline(*c.opts.Deadline)
		if err != nil {
			return err
		}
		draft.Deadline = &deadline
	}
	if c.opts.Completed != nil {
		draft.IsCompleted = *c.opts.Completed
	}

	task, err := c.app.ctrl.Update(ctx, id, draft)
	if err != nil {
		return c.app.errors.Handle("update task", err)
	}

	c.app.printf("Updated task %s: %s\n", task.ID, task.Name)
	return nil
}
