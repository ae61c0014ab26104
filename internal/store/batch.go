package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lvnplus/qgen/internal/model"
)

const batchColumns = `id, template_id, count, difficulty_level, ai_temperature, ai_model,
	status, error_message, created_at, completed_at`

// CreateBatch inserts a generation batch with status pending.
func (s *Store) CreateBatch(b model.GenerationBatch) (string, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = model.BatchPending
	}
	_, err := s.db.Exec(
		`INSERT INTO generation_batches (id, template_id, count, difficulty_level, ai_temperature,
		 ai_model, status, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.TemplateID, b.Count, b.DifficultyLevel, b.AITemperature,
		b.AIModel, b.Status, b.ErrorMessage, time.Now(),
	)
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

// GetBatch returns a batch by id, or nil when absent.
func (s *Store) GetBatch(id string) (*model.GenerationBatch, error) {
	var b model.GenerationBatch
	err := s.db.QueryRow(
		`SELECT `+batchColumns+` FROM generation_batches WHERE id = ?`, id,
	).Scan(&b.ID, &b.TemplateID, &b.Count, &b.DifficultyLevel, &b.AITemperature,
		&b.AIModel, &b.Status, &b.ErrorMessage, &b.CreatedAt, &b.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CompleteBatch marks a batch completed, recording the completion time.
func (s *Store) CompleteBatch(id string) error {
	_, err := s.db.Exec(
		`UPDATE generation_batches SET status = ?, completed_at = ? WHERE id = ?`,
		model.BatchCompleted, time.Now(), id,
	)
	return err
}

// FailBatch marks a batch failed with the captured error message.
func (s *Store) FailBatch(id, errorMessage string) error {
	_, err := s.db.Exec(
		`UPDATE generation_batches SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		model.BatchFailed, errorMessage, time.Now(), id,
	)
	return err
}

// CountBatchQuestions returns the number of questions persisted for a batch.
// Batch progress is always recomputed this way, never stored.
func (s *Store) CountBatchQuestions(batchID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM generated_questions WHERE batch_id = ?`, batchID,
	).Scan(&count)
	return count, err
}

// CountFailedBatches returns the number of batches that ended failed.
func (s *Store) CountFailedBatches() (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM generation_batches WHERE status = ?`, model.BatchFailed,
	).Scan(&count)
	return count, err
}
