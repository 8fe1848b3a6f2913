package models

import (
	"encoding/json"
	"time"
)

type TaskType string

const (
	TaskUpdateRoster   TaskType = "update_roster"
	TaskUpdateGames    TaskType = "update_games"
	TaskUpdatePostgame TaskType = "update_stats_postgame"
	TaskUpdateLive     TaskType = "update_live_stats"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is one durable job invocation in the queue. Results are stored on the
// row so callers can look them up by id after completion.
type Task struct {
	ID         string          `json:"id" db:"id"`
	Task       TaskType        `json:"task" db:"task"`
	Params     json.RawMessage `json:"params" db:"params"`
	RunAt      time.Time       `json:"run_at" db:"run_at"`
	Status     TaskStatus      `json:"status" db:"status"`
	Result     json.RawMessage `json:"result" db:"result"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	StartedAt  *time.Time      `json:"started_at" db:"started_at"`
	FinishedAt *time.Time      `json:"finished_at" db:"finished_at"`
}

type TaskParams struct {
	Season int  `json:"season,omitempty"`
	Force  bool `json:"force,omitempty"`
}

// TaskResult is the JSON-serializable outcome every job leaves behind.
// The scheduler always sees one of these, never a panic.
type TaskResult struct {
	Success       bool        `json:"success"`
	Status        string      `json:"status,omitempty"`
	Message       string      `json:"message,omitempty"`
	Error         string      `json:"error,omitempty"`
	GameStatus    string      `json:"game_status,omitempty"`
	Season        int         `json:"season,omitempty"`
	InsertedCount int         `json:"inserted_count,omitempty"`
	UpdatedCount  int         `json:"updated_count,omitempty"`
	Errors        []TaskError `json:"errors,omitempty"`
	RescheduledIn string      `json:"rescheduled_in,omitempty"`
	Timestamp     string      `json:"timestamp"`
}

// TaskError records one per-item failure inside a batch job.
type TaskError struct {
	PlayerID   int    `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Group      string `json:"group,omitempty"`
	Error      string `json:"error"`
}

func (r TaskResult) ToJSON() json.RawMessage {
	data, err := json.Marshal(r)
	if err != nil {
		return json.RawMessage(`{"success":false,"error":"result marshal failed"}`)
	}
	return data
}

// Stamp sets the timestamp to now (UTC, RFC3339) and returns the result.
func (r TaskResult) Stamp() TaskResult {
	r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return r
}
