package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

const entityTask = "task"

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock replaces time.Now for the DateCreated/DateUpdated stamps.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		r.now = now
	}
}

// WithIDGenerator replaces uuid.NewString for new task ids.
func WithIDGenerator(next func() string) Option {
	return func(r *SQLiteRepository) {
		r.newID = next
	}
}

// WithTimeouts bounds individual reads and writes. Zero leaves the
// caller's context deadline in charge.
func WithTimeouts(query, write time.Duration) Option {
	return func(r *SQLiteRepository) {
		r.queryTimeout = query
		r.writeTimeout = write
	}
}

// SQLiteRepository implements repository.TaskRepository on SQLite
type SQLiteRepository struct {
	db           *sql.DB
	now          func() time.Time
	newID        func() string
	queryTimeout time.Duration
	writeTimeout time.Duration
}

// New creates a new SQLite repository instance and migrates the schema.
// dbPath may be ":memory:".
func New(ctx context.Context, dbPath string, opts ...Option) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// every connection to :memory: would get its own empty database
	db.SetMaxOpenConns(1)

	// Run migrations
	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	r := &SQLiteRepository{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	logging.Debugf("sqlite: opened %s\n", dbPath)
	return r, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// List returns every task ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Task, error) {
	ctx, cancel := r.withTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY date_created ASC, id ASC`
	rows, err := QueryMultiple(ctx, r.db, query, ScanTasks, "tasks")
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, len(rows))
	for i, row := range rows {
		tasks[i] = toDomain(row)
	}
	return tasks, nil
}

// Get retrieves a task by ID
func (r *SQLiteRepository) Get(ctx context.Context, id string) (domain.Task, error) {
	ctx, cancel := r.withTimeout(ctx, r.queryTimeout)
	defer cancel()

	row, err := r.get(ctx, r.db, id)
	if err != nil {
		return domain.Task{}, err
	}
	return toDomain(row), nil
}

// Create inserts a task with a fresh id and timestamps.
func (r *SQLiteRepository) Create(ctx context.Context, draft domain.Draft) (domain.Task, error) {
	ctx, cancel := r.withTimeout(ctx, r.writeTimeout)
	defer cancel()

	now := r.now()
	row := fromDraft(r.newID(), draft)
	row.DateCreated = now
	row.DateUpdated = now

	query := `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var created *Task
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		err := Execute(ctx, tx, query,
			row.ID, row.Name, FormatStringPtrForDB(row.Category), FormatStringPtrForDB(row.Priority),
			FormatDeadlineForDB(row.Deadline), FormatTimeForDB(row.DateCreated), FormatTimeForDB(row.DateUpdated),
			row.IsCompleted)
		if err != nil {
			return err
		}

		// read back so callers see exactly what Get will return
		created, err = r.get(ctx, tx, row.ID)
		return err
	})
	if err != nil {
		return domain.Task{}, err
	}
	return toDomain(created), nil
}

// Update overwrites the editable fields and refreshes DateUpdated.
func (r *SQLiteRepository) Update(ctx context.Context, id string, draft domain.Draft) (domain.Task, error) {
	ctx, cancel := r.withTimeout(ctx, r.writeTimeout)
	defer cancel()

	var updated *Task
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := fromDraft(id, draft)
		query := `
		UPDATE tasks
		SET name = ?, category = ?, priority = ?, deadline = ?, date_updated = ?, is_completed = ?
		WHERE id = ?`

		err := ExecuteWithRowsAffected(ctx, tx, query, entityTask, id,
			row.Name, FormatStringPtrForDB(row.Category), FormatStringPtrForDB(row.Priority),
			FormatDeadlineForDB(row.Deadline), FormatTimeForDB(r.now()), row.IsCompleted, id)
		if err != nil {
			return err
		}

		updated, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Task{}, err
	}
	return toDomain(updated), nil
}

// Delete removes a task and returns it as it was.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) (domain.Task, error) {
	ctx, cancel := r.withTimeout(ctx, r.writeTimeout)
	defer cancel()

	var deleted *Task
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if deleted, err = r.get(ctx, tx, id); err != nil {
			return err
		}
		return ExecuteWithRowsAffected(ctx, tx, `DELETE FROM tasks WHERE id = ?`, entityTask, id, id)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return toDomain(deleted), nil
}

func (r *SQLiteRepository) get(ctx context.Context, q Querier, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return QuerySingle(ctx, q, query, ScanTask, entityTask, id, id)
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit transaction", err)
	}
	return nil
}

func (r *SQLiteRepository) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func fromDraft(id string, draft domain.Draft) *Task {
	row := &Task{
		ID:          id,
		Name:        draft.Name,
		IsCompleted: draft.IsCompleted,
	}
	if draft.Category != "" {
		category := draft.Category
		row.Category = &category
	}
	if draft.Priority != domain.PriorityNone {
		priority := string(draft.Priority)
		row.Priority = &priority
	}
	if draft.Deadline != nil {
		deadline := *draft.Deadline
		row.Deadline = &deadline
	}
	return row
}

func toDomain(row *Task) domain.Task {
	task := domain.Task{
		ID:          row.ID,
		Name:        row.Name,
		DateCreated: row.DateCreated,
		DateUpdated: row.DateUpdated,
		IsCompleted: row.IsCompleted,
	}
	if row.Category != nil {
		task.Category = *row.Category
	}
	if row.Priority != nil {
		task.Priority = domain.Priority(*row.Priority)
	}
	if row.Deadline != nil {
		task.Deadline = *row.Deadline
	}
	return task
}
