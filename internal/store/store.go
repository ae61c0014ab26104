package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prompt_templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		template_text TEXT NOT NULL,
		variables TEXT NOT NULL DEFAULT '[]',
		subject_name TEXT NOT NULL DEFAULT '',
		topic_name TEXT NOT NULL DEFAULT '',
		subtopic_name TEXT NOT NULL DEFAULT '',
		question_format TEXT NOT NULL DEFAULT '',
		options_format TEXT NOT NULL DEFAULT '',
		solution_format TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT 'system',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS variable_categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS variable_definitions (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		name TEXT NOT NULL,
		display_name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		placeholder TEXT NOT NULL DEFAULT '',
		variable_type TEXT NOT NULL DEFAULT 'text',
		default_value TEXT NOT NULL DEFAULT '',
		validation_rules TEXT NOT NULL DEFAULT '',
		options TEXT NOT NULL DEFAULT '',
		is_required INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (category_id) REFERENCES variable_categories(id)
	);

	CREATE TABLE IF NOT EXISTS template_variable_usage (
		template_id TEXT NOT NULL,
		variable_id TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (template_id, variable_id),
		FOREIGN KEY (variable_id) REFERENCES variable_definitions(id)
	);

	CREATE TABLE IF NOT EXISTS generation_batches (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		count INTEGER NOT NULL,
		difficulty_level INTEGER NOT NULL,
		ai_temperature REAL NOT NULL DEFAULT 0.7,
		ai_model TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		completed_at DATETIME,
		FOREIGN KEY (template_id) REFERENCES prompt_templates(id)
	);

	CREATE TABLE IF NOT EXISTS generated_questions (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		subject_name TEXT NOT NULL DEFAULT '',
		topic_name TEXT NOT NULL DEFAULT '',
		subtopic_name TEXT NOT NULL DEFAULT '',
		question_text TEXT NOT NULL,
		question_text_plain TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '[]',
		options_plain TEXT NOT NULL DEFAULT '[]',
		correct_answer TEXT NOT NULL DEFAULT '',
		correct_answer_plain TEXT NOT NULL DEFAULT '',
		solution TEXT NOT NULL DEFAULT '',
		solution_plain TEXT NOT NULL DEFAULT '',
		difficulty_level INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		export_status TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		FOREIGN KEY (batch_id) REFERENCES generation_batches(id)
	);

	CREATE TABLE IF NOT EXISTS export_logs (
		id TEXT PRIMARY KEY,
		batch_id TEXT,
		question_ids TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		export_time DATETIME,
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS ai_config (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		provider TEXT NOT NULL,
		model_name TEXT NOT NULL,
		api_key TEXT NOT NULL,
		max_tokens INTEGER NOT NULL DEFAULT 2048,
		temperature REAL NOT NULL DEFAULT 0.7,
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ai_providers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		api_base_url TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS ai_models (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		max_tokens INTEGER NOT NULL DEFAULT 2048,
		supports_functions INTEGER NOT NULL DEFAULT 0,
		supports_vision INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (provider_id) REFERENCES ai_providers(id)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		variable_values TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		completed_at DATETIME,
		FOREIGN KEY (template_id) REFERENCES prompt_templates(id)
	);

	CREATE TABLE IF NOT EXISTS subjects (
		subject_id INTEGER PRIMARY KEY,
		subject_name TEXT NOT NULL,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS topics (
		topic_id INTEGER PRIMARY KEY,
		subject_id INTEGER NOT NULL,
		topic_name TEXT NOT NULL,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS subtopics (
		subtopic_id INTEGER PRIMARY KEY,
		topic_id INTEGER NOT NULL,
		subtopic_name TEXT NOT NULL,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS difficulty_levels (
		level_id INTEGER PRIMARY KEY,
		level_name TEXT NOT NULL,
		level_value INTEGER NOT NULL,
		subject_id INTEGER NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		characteristics TEXT NOT NULL DEFAULT '',
		focus_area TEXT NOT NULL DEFAULT '',
		steps_required TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := s.db.Exec(schema)
	return err
}
