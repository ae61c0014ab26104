// Package sync copies master data (subjects, topics, subtopics, difficulty
// levels) from the read-only LVNPLUS MySQL database into the local store.
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"

	"github.com/lvnplus/qgen/internal/model"
	"github.com/lvnplus/qgen/internal/store"
)

// Config locates the LVNPLUS source database.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Syncer pulls master data from the source DB and upserts it locally.
type Syncer struct {
	source *sql.DB
	store  *store.Store
}

// Connect opens and verifies the source connection.
func Connect(cfg Config, st *store.Store) (*Syncer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("lvnplus-db-host is not set")
	}
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Database

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to source database: %w", err)
	}
	slog.Info("connected to LVNPLUS database", "host", cfg.Host, "database", cfg.Database)
	return &Syncer{source: db, store: st}, nil
}

func (s *Syncer) Close() error {
	return s.source.Close()
}

// Run copies all four master-data tables. Each table is synced completely
// before the next; a failure aborts the run with rows already upserted kept.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.syncSubjects(ctx); err != nil {
		return fmt.Errorf("sync subjects: %w", err)
	}
	if err := s.syncTopics(ctx); err != nil {
		return fmt.Errorf("sync topics: %w", err)
	}
	if err := s.syncSubtopics(ctx); err != nil {
		return fmt.Errorf("sync subtopics: %w", err)
	}
	if err := s.syncDifficultyLevels(ctx); err != nil {
		return fmt.Errorf("sync difficulty levels: %w", err)
	}
	slog.Info("master data synchronization completed")
	return nil
}

func (s *Syncer) syncSubjects(ctx context.Context) error {
	rows, err := s.source.QueryContext(ctx,
		`SELECT subject_id, subject_name, description FROM subjects`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var sub model.Subject
		var description sql.NullString
		if err := rows.Scan(&sub.SubjectID, &sub.SubjectName, &description); err != nil {
			return err
		}
		sub.Description = description.String
		if err := s.store.UpsertSubject(sub); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	slog.Info("synced subjects", "count", count)
	return nil
}

func (s *Syncer) syncTopics(ctx context.Context) error {
	rows, err := s.source.QueryContext(ctx,
		`SELECT topic_id, subject_id, topic_name, description FROM topics`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var t model.Topic
		var description sql.NullString
		if err := rows.Scan(&t.TopicID, &t.SubjectID, &t.TopicName, &description); err != nil {
			return err
		}
		t.Description = description.String
		if err := s.store.UpsertTopic(t); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	slog.Info("synced topics", "count", count)
	return nil
}

func (s *Syncer) syncSubtopics(ctx context.Context) error {
	rows, err := s.source.QueryContext(ctx,
		`SELECT subtopic_id, topic_id, subtopic_name, description FROM subtopics`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var st model.Subtopic
		var description sql.NullString
		if err := rows.Scan(&st.SubtopicID, &st.TopicID, &st.SubtopicName, &description); err != nil {
			return err
		}
		st.Description = description.String
		if err := s.store.UpsertSubtopic(st); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	slog.Info("synced subtopics", "count", count)
	return nil
}

func (s *Syncer) syncDifficultyLevels(ctx context.Context) error {
	rows, err := s.source.QueryContext(ctx,
		`SELECT level_id, level_name, level_value, subject_id, purpose, characteristics,
		 focus_area, steps_required, active FROM difficulty_levels`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var d model.DifficultyLevel
		var stepsRequired sql.NullString
		var active int
		if err := rows.Scan(&d.LevelID, &d.LevelName, &d.LevelValue, &d.SubjectID,
			&d.Purpose, &d.Characteristics, &d.FocusArea, &stepsRequired, &active); err != nil {
			return err
		}
		d.StepsRequired = stepsRequired.String
		d.Active = active != 0
		if err := s.store.UpsertDifficultyLevel(d); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	slog.Info("synced difficulty levels", "count", count)
	return nil
}
