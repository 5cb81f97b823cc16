package cli

import (
	"context"
	"fmt"
	"strings"

	"task-tracker/internal/domain"
)

// ListOptions holds the filter and sort flags of the list command
type ListOptions struct {
	Category  string
	Priority  string
	Completed string
	SortBy    string
	SortOrder string
}

// ListCommand handles the list command
type ListCommand struct {
	app  *App
	opts ListOptions
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App, opts ListOptions) *ListCommand {
	return &ListCommand{app: app, opts: opts}
}

// Execute runs the list command. Arguments are joined into the search text.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	filter, err := c.filter(args)
	if err != nil {
		return err
	}

	if c.opts.SortBy != "" || c.opts.SortOrder != "" {
		sort, err := c.sort()
		if err != nil {
			return err
		}
		c.app.ctrl.SetSort(sort)
	}
	c.app.ctrl.SetFilter(filter)

	if err := c.app.load(ctx); err != nil {
		return err
	}

	c.printSnapshot()
	return nil
}

func (c *ListCommand) filter(args []string) (domain.FilterSpec, error) {
	priority, err := parsePriorityFlag(c.opts.Priority)
	if err != nil {
		return domain.FilterSpec{}, err
	}
	completed, err := parseCompletedFilter(c.opts.Completed)
	if err != nil {
		return domain.FilterSpec{}, err
	}

	return domain.FilterSpec{
		Category:  c.opts.Category,
		Priority:  priority,
		Completed: completed,
		Search:    strings.Join(args, " "),
	}, nil
}

func (c *ListCommand) sort() (domain.SortSpec, error) {
	spec := c.app.ctrl.Snapshot().Sort
	if c.opts.SortBy != "" {
		field, ok := domain.ParseSortField(c.opts.SortBy)
		if !ok {
			return domain.SortSpec{}, fmt.Errorf("invalid sort field %q: expected dateCreated, deadline, name, category or priority", c.opts.SortBy)
		}
		spec.SortBy = field
	}
	if c.opts.SortOrder != "" {
		order, ok := domain.ParseSortOrder(c.opts.SortOrder)
		if !ok {
			return domain.SortSpec{}, fmt.Errorf("invalid sort order %q: expected asc or desc", c.opts.SortOrder)
		}
		spec.Order = order
	}
	return spec, nil
}

// printSnapshot prints the view followed by the stats and facet lines
func (c *ListCommand) printSnapshot() {
	snap := c.app.ctrl.Snapshot()

	if len(snap.View) == 0 {
		if snap.FilterActive {
			c.app.printf("No tasks found. Try adjusting your filters.\n")
		} else {
			c.app.printf("No tasks found. Add your first task!\n")
		}
	} else {
		c.app.printTasks(snap.View)
	}

	c.app.printf("\nTotal: %d  Completed: %d  Pending: %d\n", snap.Stats.Total, snap.Stats.Completed, snap.Stats.Pending)
	if len(snap.Categories) > 0 {
		c.app.printf("Categories: %s\n", strings.Join(snap.Categories, ", "))
	}
	if len(snap.Priorities) > 0 {
		names := make([]string, len(snap.Priorities))
		for i, p := range snap.Priorities {
			names[i] = string(p)
		}
		c.app.printf("Priorities: %s\n", strings.Join(names, ", "))
	}
}
