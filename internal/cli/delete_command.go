package cli

import (
	"bufio"
	"context"
	"strings"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app *App
	yes bool
}

// NewDeleteCommand creates a new delete command handler. With yes set the
// confirmation prompt is skipped.
func NewDeleteCommand(app *App, yes bool) *DeleteCommand {
	return &DeleteCommand{app: app, yes: yes}
}

// Execute deletes the task whose id is the single argument
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.load(ctx); err != nil {
		return err
	}

	id := args[0]
	task, err := c.app.task(id)
	if err != nil {
		return err
	}

	if !c.yes && !c.confirm(task.Name) {
		c.app.printf("Delete cancelled.\n")
		return nil
	}

	// the store may answer without the record, so report the cached name
	if _, err := c.app.ctrl.Delete(ctx, id); err != nil {
		return c.app.errors.Handle("delete task", err)
	}

	c.app.printf("Deleted task: %s\n", task.Name)
	return nil
}

func (c *DeleteCommand) confirm(name string) bool {
	c.app.printf("Are you sure you want to delete this task? %q [y/N]: ", name)

	reader := bufio.NewReader(c.app.in)
	input, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
