package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// ExportCommand handles the export command
type ExportCommand struct {
	app    *App
	format string
	mapper *domain.TaskMapper
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App, format string) *ExportCommand {
	return &ExportCommand{app: app, format: format, mapper: domain.NewTaskMapper()}
}

// Execute writes every task in the current sort order
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	if c.format != "csv" {
		return errors.NewInvalidInputError("format", c.format, "unsupported format")
	}

	if err := c.app.load(ctx); err != nil {
		return err
	}
	return c.outputCSV(c.app.ctrl.Snapshot().View)
}

// outputCSV outputs tasks in CSV format, timestamps as on the wire
func (c *ExportCommand) outputCSV(tasks []domain.Task) error {
	writer := csv.NewWriter(c.app.out)

	header := []string{"id", "name", "category", "priority", "deadline", "dateCreated", "dateUpdated", "isCompleted"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, task := range tasks {
		w := c.mapper.ToWire(task)
		row := []string{
			w.ID,
			w.Name,
			task.Category,
			string(task.Priority),
			w.Deadline,
			w.DateCreated,
			w.DateUpdated,
			strconv.FormatBool(w.IsCompleted),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
