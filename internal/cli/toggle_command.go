package cli

import "context"

// ToggleCommand handles the done and undone commands
type ToggleCommand struct {
	app       *App
	completed bool
}

// NewToggleCommand creates a handler setting the completion flag to completed
func NewToggleCommand(app *App, completed bool) *ToggleCommand {
	return &ToggleCommand{app: app, completed: completed}
}

// Execute sets the completion flag of every task id given
func (c *ToggleCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.load(ctx); err != nil {
		return err
	}

	for _, id := range args {
		task, err := c.app.ctrl.ToggleComplete(ctx, id, c.completed)
		if err != nil {
			return c.app.errors.Handle("update task", err)
		}
		if task.IsCompleted {
			c.app.printf("Completed task %s: %s\n", task.ID, task.Name)
		} else {
			c.app.printf("Reopened task %s: %s\n", task.ID, task.Name)
		}
	}
	return nil
}
