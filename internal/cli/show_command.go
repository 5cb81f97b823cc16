package cli

import "context"

// ShowCommand handles the show command
type ShowCommand struct {
	app *App
}

// NewShowCommand creates a new show command handler
func NewShowCommand(app *App) *ShowCommand {
	return &ShowCommand{app: app}
}

// Execute prints the task whose id is the single argument
func (c *ShowCommand) Execute(ctx context.Context, args []string) error {
	if err := c.app.load(ctx); err != nil {
		return err
	}

	task, err := c.app.task(args[0])
	if err != nil {
		return err
	}
	c.app.printTask(task)
	return nil
}
