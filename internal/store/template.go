package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lvnplus/qgen/internal/model"
)

const templateColumns = `id, name, description, template_text, variables, subject_name, topic_name,
	subtopic_name, question_format, options_format, solution_format, created_by, created_at`

func scanTemplate(row interface{ Scan(...any) error }) (*model.Template, error) {
	var t model.Template
	var variablesJSON string
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.TemplateText, &variablesJSON,
		&t.SubjectName, &t.TopicName, &t.SubtopicName,
		&t.QuestionFormat, &t.OptionsFormat, &t.SolutionFormat,
		&t.CreatedBy, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(variablesJSON), &t.Variables); err != nil {
		return nil, fmt.Errorf("parse template variables: %w", err)
	}
	if t.Variables == nil {
		t.Variables = []model.Variable{}
	}
	return &t, nil
}

// CreateTemplate inserts a template, assigning an id when none is set.
func (s *Store) CreateTemplate(t model.Template) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	variablesJSON, err := json.Marshal(t.Variables)
	if err != nil {
		return "", fmt.Errorf("encode template variables: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO prompt_templates (id, name, description, template_text, variables, subject_name,
		 topic_name, subtopic_name, question_format, options_format, solution_format, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.TemplateText, string(variablesJSON),
		t.SubjectName, t.TopicName, t.SubtopicName,
		t.QuestionFormat, t.OptionsFormat, t.SolutionFormat,
		t.CreatedBy, time.Now(),
	)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// GetTemplate returns a template by id, or nil when absent.
func (s *Store) GetTemplate(id string) (*model.Template, error) {
	row := s.db.QueryRow(`SELECT `+templateColumns+` FROM prompt_templates WHERE id = ?`, id)
	return scanTemplate(row)
}

// ListTemplates returns all templates.
func (s *Store) ListTemplates() ([]model.Template, error) {
	rows, err := s.db.Query(`SELECT ` + templateColumns + ` FROM prompt_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var templates []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// UpdateTemplate overwrites the mutable fields of a template.
func (s *Store) UpdateTemplate(t model.Template) error {
	variablesJSON, err := json.Marshal(t.Variables)
	if err != nil {
		return fmt.Errorf("encode template variables: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE prompt_templates SET name = ?, description = ?, template_text = ?, variables = ?,
		 subject_name = ?, topic_name = ?, subtopic_name = ?,
		 question_format = ?, options_format = ?, solution_format = ?
		 WHERE id = ?`,
		t.Name, t.Description, t.TemplateText, string(variablesJSON),
		t.SubjectName, t.TopicName, t.SubtopicName,
		t.QuestionFormat, t.OptionsFormat, t.SolutionFormat,
		t.ID,
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

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(id string) error {
	_, err := s.db.Exec(`DELETE FROM prompt_templates WHERE id = ?`, id)
	return err
}
