package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lvnplus/qgen/internal/model"
)

const taskColumns = `id, template_id, variable_values, status, error_message, created_at, completed_at`

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.TemplateID, &t.VariableValues, &t.Status,
		&t.ErrorMessage, &t.CreatedAt, &t.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask inserts a task with status pending.
func (s *Store) CreateTask(t model.Task) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, template_id, variable_values, status, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.TemplateID, t.VariableValues, t.Status, t.ErrorMessage, time.Now(),
	)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// GetTask returns a task by id, or nil when absent.
func (s *Store) GetTask(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListTasks returns all tasks, newest first.
func (s *Store) ListTasks() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// SetTaskProcessing moves a task from pending to processing.
func (s *Store) SetTaskProcessing(id string) error {
	_, err := s.db.Exec(`UPDATE tasks SET status = ? WHERE id = ?`, model.TaskProcessing, id)
	return err
}

// CompleteTask marks a task completed with a completion time.
func (s *Store) CompleteTask(id string) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?`,
		model.TaskCompleted, time.Now(), id,
	)
	return err
}

// FailTask marks a task failed with the captured error message.
func (s *Store) FailTask(id, errorMessage string) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, error_message = ? WHERE id = ?`,
		model.TaskFailed, errorMessage, id,
	)
	return err
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	return err
}
