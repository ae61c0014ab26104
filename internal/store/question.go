package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lvnplus/qgen/internal/model"
)

const questionColumns = `id, batch_id, subject_name, topic_name, subtopic_name,
	question_text, question_text_plain, options, options_plain,
	correct_answer, correct_answer_plain, solution, solution_plain,
	difficulty_level, status, export_status, created_by, created_at`

func scanQuestion(row interface{ Scan(...any) error }) (*model.GeneratedQuestion, error) {
	var q model.GeneratedQuestion
	err := row.Scan(&q.ID, &q.BatchID, &q.SubjectName, &q.TopicName, &q.SubtopicName,
		&q.QuestionText, &q.QuestionTextPlain, &q.Options, &q.OptionsPlain,
		&q.CorrectAnswer, &q.CorrectAnswerPlain, &q.Solution, &q.SolutionPlain,
		&q.DifficultyLevel, &q.Status, &q.ExportStatus, &q.CreatedBy, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuestion inserts a generated question.
func (s *Store) CreateQuestion(q model.GeneratedQuestion) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = model.QuestionPending
	}
	_, err := s.db.Exec(
		`INSERT INTO generated_questions (id, batch_id, subject_name, topic_name, subtopic_name,
		 question_text, question_text_plain, options, options_plain,
		 correct_answer, correct_answer_plain, solution, solution_plain,
		 difficulty_level, status, export_status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.BatchID, q.SubjectName, q.TopicName, q.SubtopicName,
		q.QuestionText, q.QuestionTextPlain, q.Options, q.OptionsPlain,
		q.CorrectAnswer, q.CorrectAnswerPlain, q.Solution, q.SolutionPlain,
		q.DifficultyLevel, q.Status, q.ExportStatus, q.CreatedBy, time.Now(),
	)
	if err != nil {
		return "", err
	}
	return q.ID, nil
}

// GetQuestion returns a question by id, or nil when absent.
func (s *Store) GetQuestion(id string) (*model.GeneratedQuestion, error) {
	row := s.db.QueryRow(`SELECT `+questionColumns+` FROM generated_questions WHERE id = ?`, id)
	return scanQuestion(row)
}

// ListQuestions returns questions, optionally filtered by batch and status.
// Empty strings mean no filtering on that field.
func (s *Store) ListQuestions(batchID string, status model.QuestionStatus) ([]model.GeneratedQuestion, error) {
	query := `SELECT ` + questionColumns + ` FROM generated_questions WHERE 1=1`
	var args []any
	if batchID != "" {
		query += ` AND batch_id = ?`
		args = append(args, batchID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.GeneratedQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// ApproveQuestion sets a question's status to approved. Re-approving an
// already-approved question rewrites the same value.
func (s *Store) ApproveQuestion(id string) error {
	res, err := s.db.Exec(
		`UPDATE generated_questions SET status = ? WHERE id = ?`,
		model.QuestionApproved, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateQuestion overwrites the review-editable field pairs wholesale.
func (s *Store) UpdateQuestion(id string, u model.QuestionUpdate) error {
	res, err := s.db.Exec(
		`UPDATE generated_questions SET question_text = ?, question_text_plain = ?,
		 options = ?, options_plain = ?, correct_answer = ?, correct_answer_plain = ?,
		 solution = ?, solution_plain = ? WHERE id = ?`,
		u.QuestionText, u.QuestionTextPlain, u.Options, u.OptionsPlain,
		u.CorrectAnswer, u.CorrectAnswerPlain, u.Solution, u.SolutionPlain, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteQuestion hard-deletes a question. Rejection keeps no audit trail.
func (s *Store) DeleteQuestion(id string) error {
	_, err := s.db.Exec(`DELETE FROM generated_questions WHERE id = ?`, id)
	return err
}

// MarkQuestionsExported flips export_status on every listed question.
func (s *Store) MarkQuestionsExported(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE generated_questions SET export_status = ? WHERE id IN (?` +
		repeatPlaceholder(len(ids)-1) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, model.ExportStatusExported)
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.Exec(query, args...)
	return err
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}

// CountQuestions returns total/approved/pending counts in one pass.
func (s *Store) CountQuestions() (total, approved, pending int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		 FROM generated_questions`,
		model.QuestionApproved, model.QuestionPending,
	).Scan(&total, &approved, &pending)
	return total, approved, pending, err
}
