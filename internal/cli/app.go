package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"task-tracker/internal/config"
	"task-tracker/internal/controller"
	"task-tracker/internal/domain"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App is what a single command invocation works with: a controller over
// the configured store and the terminal streams.
type App struct {
	ctrl   *controller.Controller
	config *config.Config
	loc    *time.Location
	in     io.Reader
	out    io.Writer
	errors *ErrorHandler
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(ctrl *controller.Controller, cfg *config.Config, in io.Reader, out io.Writer) *App {
	loc := time.Local
	if cfg != nil {
		if l, err := cfg.Location(); err == nil {
			loc = l
		}
	}
	return &App{
		ctrl:   ctrl,
		config: cfg,
		loc:    loc,
		in:     in,
		out:    out,
		errors: NewErrorHandler(),
	}
}

// load fills the controller's collection. Every command except serve and
// mcp starts with it.
func (a *App) load(ctx context.Context) error {
	if err := a.ctrl.Load(ctx); err != nil {
		return fmt.Errorf("%s", a.ctrl.Snapshot().Error)
	}
	return nil
}

// task returns the cached task or a not found error.
func (a *App) task(id string) (domain.Task, error) {
	task, ok := a.ctrl.Get(id)
	if !ok {
		return domain.Task{}, fmt.Errorf("%s: %s", controller.MsgNotFound, id)
	}
	return task, nil
}

func (a *App) parseDeadline(s string) (time.Time, error) {
	t, err := domain.ParseDate(s, a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// printTasks writes one row per task.
func (a *App) printTasks(tasks []domain.Task) {
	now := timeNow()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tNAME\tCATEGORY\tPRIORITY\tDEADLINE")
	for _, t := range tasks {
		done := "[ ]"
		if t.IsCompleted {
			done = "[x]"
		}
		deadline := formatDate(t.Deadline)
		if t.IsOverdue(now) {
			deadline += " (overdue)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, done, t.Name, orDash(t.Category), orDash(string(t.Priority)), deadline)
	}
	w.Flush()
}

// printTask writes the details of one task.
func (a *App) printTask(t domain.Task) {
	status := "pending"
	if t.IsCompleted {
		status = "completed"
	} else if t.IsOverdue(timeNow()) {
		status = "overdue"
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", t.ID)
	fmt.Fprintf(w, "Name:\t%s\n", t.Name)
	fmt.Fprintf(w, "Category:\t%s\n", orDash(t.Category))
	fmt.Fprintf(w, "Priority:\t%s\n", orDash(string(t.Priority)))
	fmt.Fprintf(w, "Deadline:\t%s\n", formatDate(t.Deadline))
	fmt.Fprintf(w, "Status:\t%s\n", status)
	fmt.Fprintf(w, "Created:\t%s\n", formatDateTime(t.DateCreated))
	if !t.DateUpdated.Equal(t.DateCreated) {
		fmt.Fprintf(w, "Updated:\t%s\n", formatDateTime(t.DateUpdated))
	}
	w.Flush()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// parsePriorityFlag accepts Low, Medium or High in any case.
func parsePriorityFlag(s string) (domain.Priority, error) {
	p, ok := domain.ParsePriority(s)
	if !ok {
		return domain.PriorityNone, fmt.Errorf("invalid priority %q: expected Low, Medium or High", s)
	}
	return p, nil
}

// parseCompletedFilter maps "", "true"/"done" and "false"/"pending" onto the
// tri-state completion filter.
func parseCompletedFilter(s string) (*bool, error) {
	var completed bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	case "true", "yes", "done", "completed":
		completed = true
	case "false", "no", "pending", "open":
		completed = false
	default:
		return nil, fmt.Errorf("invalid completed filter %q: expected true or false", s)
	}
	return &completed, nil
}
