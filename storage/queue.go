package storage

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"gridiron_hub/models"
)

// TaskQueue is the durable job queue. Tasks survive restarts; the scheduler
// enqueues on its triggers and holds no state of its own between ticks.
// Completed tasks keep their result JSON for lookup by id.
type TaskQueue struct {
	db *sql.DB

	// Serializes claims across in-process workers.
	claimMu sync.Mutex
}

func NewTaskQueue(dbPath string) (*TaskQueue, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	q := &TaskQueue{db: db}
	if err := q.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return q, nil
}

func (q *TaskQueue) Close() error {
	return q.db.Close()
}

func (q *TaskQueue) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		params JSON,
		run_at DATETIME NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		result JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		started_at DATETIME,
		finished_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_claimable ON tasks(status, run_at) WHERE status = 'pending';
	CREATE INDEX IF NOT EXISTS idx_tasks_type ON tasks(task, status);
	`
	_, err := q.db.Exec(schema)
	return err
}

// Enqueue adds a task due after delay and returns its id. A zero delay means
// runnable immediately.
func (q *TaskQueue) Enqueue(task models.TaskType, params models.TaskParams, delay time.Duration) (string, error) {
	id := uuid.NewString()
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", err
	}

	_, err = q.db.Exec(`
		INSERT INTO tasks (id, task, params, run_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		id, string(task), paramsJSON, time.Now().Add(delay).UTC(), string(models.TaskStatusPending))
	if err != nil {
		return "", err
	}
	return id, nil
}

// ClaimNext atomically moves the oldest due pending task to running and
// returns it, or nil when nothing is due.
func (q *TaskQueue) ClaimNext(now time.Time) (*models.Task, error) {
	q.claimMu.Lock()
	defer q.claimMu.Unlock()

	row := q.db.QueryRow(`
		SELECT id, task, params, run_at, status, created_at
		FROM tasks
		WHERE status = ? AND run_at <= ?
		ORDER BY run_at
		LIMIT 1`, string(models.TaskStatusPending), now.UTC())

	var t models.Task
	var params sql.NullString
	var taskType string
	if err := row.Scan(&t.ID, &taskType, &params, &t.RunAt, &t.Status, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.Task = models.TaskType(taskType)
	if params.Valid {
		t.Params = json.RawMessage(params.String)
	}

	startedAt := time.Now().UTC()
	if _, err := q.db.Exec(`
		UPDATE tasks SET status = ?, started_at = ? WHERE id = ?`,
		string(models.TaskStatusRunning), startedAt, t.ID); err != nil {
		return nil, err
	}
	t.Status = models.TaskStatusRunning
	t.StartedAt = &startedAt

	return &t, nil
}

// Complete stores the result and marks the task completed. Jobs never fail
// at the queue level: a failed job is a completed task with a failed result.
func (q *TaskQueue) Complete(id string, result json.RawMessage) error {
	_, err := q.db.Exec(`
		UPDATE tasks SET status = ?, result = ?, finished_at = ? WHERE id = ?`,
		string(models.TaskStatusCompleted), string(result), time.Now().UTC(), id)
	return err
}

// Get returns one task with its stored result, or nil if unknown.
func (q *TaskQueue) Get(id string) (*models.Task, error) {
	row := q.db.QueryRow(`
		SELECT id, task, params, run_at, status, result, created_at, started_at, finished_at
		FROM tasks WHERE id = ?`, id)

	var t models.Task
	var taskType string
	var params, result sql.NullString
	var startedAt, finishedAt sql.NullTime
	err := row.Scan(&t.ID, &taskType, &params, &t.RunAt, &t.Status, &result, &t.CreatedAt, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.Task = models.TaskType(taskType)
	if params.Valid {
		t.Params = json.RawMessage(params.String)
	}
	if result.Valid {
		t.Result = json.RawMessage(result.String)
	}
	if startedAt.Valid {
		t.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		t.FinishedAt = &finishedAt.Time
	}
	return &t, nil
}

// HasPending reports whether a task of this type is already queued or
// running. The live-stats fallback tick uses it to avoid piling up polls.
func (q *TaskQueue) HasPending(task models.TaskType) (bool, error) {
	var count int
	err := q.db.QueryRow(`
		SELECT COUNT(*) FROM tasks WHERE task = ? AND status IN (?, ?)`,
		string(task), string(models.TaskStatusPending), string(models.TaskStatusRunning)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ParseTaskParams decodes a task's params, defaulting cleanly when absent.
func ParseTaskParams(t *models.Task) (models.TaskParams, error) {
	if len(t.Params) == 0 {
		return models.TaskParams{}, nil
	}
	var params models.TaskParams
	if err := json.Unmarshal(t.Params, &params); err != nil {
		return models.TaskParams{}, err
	}
	return params, nil
}
