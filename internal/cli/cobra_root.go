package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/config"
	"task-tracker/internal/controller"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/validation"
)

// RepositoryFactory opens the task store for a backend name.
type RepositoryFactory func(ctx context.Context, cfg *config.Config, backend string) (repository.TaskRepository, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	loader  *config.Loader
	config  *config.Config
	factory RepositoryFactory
	version string
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(loader *config.Loader, factory RepositoryFactory, version string) *RootCommand {
	root := &RootCommand{
		loader:  loader,
		factory: factory,
		version: version,
	}

	root.cmd = &cobra.Command{
		Use:     "tasks",
		Short:   "A command-line task manager",
		Version: version,
		Long: `tasks manages a list of tasks kept in a remote task store, a local
SQLite database or a Google Tasks list.

EXAMPLES:
  tasks add "Pay rent" --deadline 2026-11-01 --category Home --priority High
  tasks list --completed false --sort-by deadline --sort-order asc
  tasks list rent                          # search names and categories
  tasks done 3                             # mark task 3 as completed
  tasks edit 3 --deadline 2026-11-15       # change a single field
  tasks delete 3 --yes
  tasks export --format csv > tasks.csv
  tasks serve                              # serve the task API from SQLite
  tasks mcp                                # expose the tasks as MCP tools on stdio

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  The config file is YAML, read from $TASKS_CONFIG or $XDG_CONFIG_HOME/tasks/config.yaml.

  Store Configuration:
    TASKS_STORE_BACKEND                    http, sqlite or googletasks (default: http)
    TASKS_REMOTE_BASE_URL                  Task API URL (default: https://localhost:7279/api/Task)
    TASKS_REMOTE_TIMEOUT                   Request timeout (default: 10s)
    TASKS_REMOTE_INSECURE                  Skip TLS verification (default: false)
    TASKS_REMOTE_TOKEN                     Bearer token sent to the task API
    TASKS_SQLITE_PATH                      SQLite database file
    TASKS_GOOGLE_CONFIG_DIR                Directory holding oauth_client.json and token.json
    TASKS_GOOGLE_TASK_LIST                 Google Tasks list id (default: @default)

  Server Configuration:
    TASKS_SERVER_ADDR                      Listen address (default: :7279)
    TASKS_SERVER_BASE_PATH                 Route prefix (default: /api/Task)
    TASKS_SERVER_BACKEND                   Store served by "tasks serve" (default: sqlite)

  View and Validation:
    TASKS_SORT_BY                          Default sort field (default: dateCreated)
    TASKS_SORT_ORDER                       Default sort order (default: desc)
    TASKS_TIMEZONE                         Zone deciding what "today" is (default: Local)

  Application Configuration:
    TASKS_APP_TIMEOUT                      Command timeout (default: 60s)
    TASKS_APP_VERBOSE                      Enable verbose output (default: false)
    TASKS_DEBUG                            Enable debug output`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Apply configuration overrides from flags before any command runs
			return root.loadConfig()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("backend", "", "Task store: http, sqlite or googletasks (overrides TASKS_STORE_BACKEND)")
	flags.String("base-url", "", "Task API URL (overrides TASKS_REMOTE_BASE_URL)")
	flags.String("sqlite-path", "", "SQLite database file (overrides TASKS_SQLITE_PATH)")
	flags.String("timezone", "", "Zone deciding what today is (overrides TASKS_TIMEZONE)")
	flags.Duration("app-timeout", 0, "Command timeout (overrides TASKS_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides TASKS_APP_VERBOSE)")
}

// loadConfig runs the configuration cascade with the flags given on the
// command line as the last layer.
func (r *RootCommand) loadConfig() error {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if flags.Changed("backend") {
		v, _ := flags.GetString("backend")
		overrides.Backend = &v
	}
	if flags.Changed("base-url") {
		v, _ := flags.GetString("base-url")
		overrides.BaseURL = &v
	}
	if flags.Changed("sqlite-path") {
		v, _ := flags.GetString("sqlite-path")
		overrides.SQLitePath = &v
	}
	if flags.Changed("timezone") {
		v, _ := flags.GetString("timezone")
		overrides.Timezone = &v
	}
	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	cfg, err := r.loader.LoadWithOverrides(overrides)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg
	logging.SetVerbose(cfg.Application.Verbose)
	return nil
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	var listOpts ListOptions
	listCmd := &cobra.Command{
		Use:   "list [search text]",
		Short: "List tasks",
		Long: `List tasks with optional filtering and sorting.

Search text is matched case-insensitively against task names and categories.
The listing ends with completion counts and the known categories and priorities.

Examples:
  tasks list                               # all tasks, newest first
  tasks list rent                          # tasks mentioning "rent"
  tasks list --category Work --completed false
  tasks list --sort-by priority --sort-order desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewListCommand(app, listOpts).Execute(ctx, args)
			})
		},
	}
	listCmd.Flags().StringVar(&listOpts.Category, "category", "", "Only tasks in this category")
	listCmd.Flags().StringVar(&listOpts.Priority, "priority", "", "Only tasks with this priority (Low, Medium, High)")
	listCmd.Flags().StringVar(&listOpts.Completed, "completed", "", "Only completed (true) or pending (false) tasks")
	listCmd.Flags().StringVar(&listOpts.SortBy, "sort-by", "", "Sort field: dateCreated, deadline, name, category, priority")
	listCmd.Flags().StringVar(&listOpts.SortOrder, "sort-order", "", "Sort order: asc or desc")

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewShowCommand(app).Execute(ctx, args)
			})
		},
	}

	var addOpts AddOptions
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a task",
		Long: `Add a task. A deadline is required and may not be in the past.

Examples:
  tasks add "Pay rent" --deadline 2026-11-01
  tasks add Write report --deadline 2026-11-03 --category Work --priority High`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewAddCommand(app, addOpts).Execute(ctx, args)
			})
		},
	}
	addCmd.Flags().StringVar(&addOpts.Category, "category", "", "Category")
	addCmd.Flags().StringVar(&addOpts.Priority, "priority", "Medium", "Priority: Low, Medium or High")
	addCmd.Flags().StringVar(&addOpts.Deadline, "deadline", "", "Deadline as YYYY-MM-DD")

	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task",
		Long: `Edit a task. Only the fields given as flags change.

Examples:
  tasks edit 3 --name "Pay rent and bills"
  tasks edit 3 --category "" --priority Low`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := editOptionsFromFlags(cmd)
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewEditCommand(app, opts).Execute(ctx, args)
			})
		},
	}
	editCmd.Flags().String("name", "", "New name")
	editCmd.Flags().String("category", "", "New category (empty clears it)")
	editCmd.Flags().String("priority", "", "New priority: Low, Medium or High")
	editCmd.Flags().String("deadline", "", "New deadline as YYYY-MM-DD")
	editCmd.Flags().Bool("completed", false, "Completion status")

	doneCmd := &cobra.Command{
		Use:   "done ID...",
		Short: "Mark tasks as completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewToggleCommand(app, true).Execute(ctx, args)
			})
		},
	}

	undoneCmd := &cobra.Command{
		Use:   "undone ID...",
		Short: "Mark tasks as pending again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewToggleCommand(app, false).Execute(ctx, args)
			})
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Long: `Delete a task. This operation cannot be undone; you are asked to
confirm unless --yes is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewDeleteCommand(app, yes).Execute(ctx, args)
			})
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	var format string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks",
		Long: `Export every task in the default sort order.

Supported formats:
  csv - Comma-separated values format

Example:
  tasks export --format csv > tasks.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runWithApp(cmd, func(ctx context.Context, app *App) error {
				return NewExportCommand(app, format).Execute(ctx, args)
			})
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "csv", "Output format")

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API",
		Long: `Serve the task API over HTTP from the store named by server.backend
(SQLite by default) until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				r.config.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			repo, err := r.factory(ctx, r.config, r.config.Server.Backend)
			if err != nil {
				return err
			}
			defer repository.Close(repo)

			return NewServeCommand(repo, r.config, cmd.OutOrStdout()).Execute(ctx, args)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides TASKS_SERVER_ADDR)")

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tasks as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := r.factory(ctx, r.config, r.config.Store.Backend)
			if err != nil {
				return err
			}
			defer repository.Close(repo)

			app := NewApp(r.newController(repo), r.config, cmd.InOrStdin(), cmd.OutOrStdout())
			return NewMCPCommand(app, r.version).Execute(ctx, args)
		},
	}

	r.cmd.AddCommand(
		listCmd,
		showCmd,
		addCmd,
		editCmd,
		doneCmd,
		undoneCmd,
		deleteCmd,
		exportCmd,
		serveCmd,
		mcpCmd,
	)
}

// runWithApp opens the configured store and runs fn within the command timeout
func (r *RootCommand) runWithApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()

	repo, err := r.factory(ctx, r.config, r.config.Store.Backend)
	if err != nil {
		return err
	}
	defer repository.Close(repo)

	app := NewApp(r.newController(repo), r.config, cmd.InOrStdin(), cmd.OutOrStdout())
	return fn(ctx, app)
}

func (r *RootCommand) newController(repo repository.TaskRepository) *controller.Controller {
	loc, err := r.config.Location()
	if err != nil {
		loc = time.Local
	}
	v := validation.NewValidator(
		validation.WithClock(func() time.Time { return timeNow() }),
		validation.WithLocation(loc),
	)
	return controller.New(repo, controller.WithValidator(v), controller.WithSort(r.config.SortSpec()))
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 60 * time.Second // Default timeout
}

// editOptionsFromFlags keeps only the flags given on the command line
func editOptionsFromFlags(cmd *cobra.Command) EditOptions {
	flags := cmd.Flags()
	var opts EditOptions
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	opts.Name = str("name")
	opts.Category = str("category")
	opts.Priority = str("priority")
	opts.Deadline = str("deadline")
	if flags.Changed("completed") {
		v, _ := flags.GetBool("completed")
		opts.Completed = &v
	}
	return opts
}
