package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lvnplus/qgen/internal/model"
)

// CreateExportLog inserts an export log with status pending.
func (s *Store) CreateExportLog(e model.ExportLog) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = model.ExportPending
	}
	_, err := s.db.Exec(
		`INSERT INTO export_logs (id, batch_id, question_ids, status, error_message)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, nullString(e.BatchID), e.QuestionIDs, e.Status, e.ErrorMessage,
	)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// GetExportLog returns an export log by id, or nil when absent.
func (s *Store) GetExportLog(id string) (*model.ExportLog, error) {
	var e model.ExportLog
	var batchID sql.NullString
	err := s.db.QueryRow(
		`SELECT id, batch_id, question_ids, status, export_time, error_message
		 FROM export_logs WHERE id = ?`, id,
	).Scan(&e.ID, &batchID, &e.QuestionIDs, &e.Status, &e.ExportTime, &e.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.BatchID = batchID.String
	return &e, nil
}

// CompleteExportLog records the single terminal success update.
func (s *Store) CompleteExportLog(id string) error {
	_, err := s.db.Exec(
		`UPDATE export_logs SET status = ?, export_time = ? WHERE id = ?`,
		model.ExportCompleted, time.Now(), id,
	)
	return err
}

// FailExportLog records the single terminal failure update.
func (s *Store) FailExportLog(id, errorMessage string) error {
	_, err := s.db.Exec(
		`UPDATE export_logs SET status = ?, error_message = ? WHERE id = ?`,
		model.ExportFailed, errorMessage, id,
	)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
