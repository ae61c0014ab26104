package store

import (
	"github.com/lvnplus/qgen/internal/model"
)

// UpsertSubject inserts or replaces a subject mirrored from the source DB.
func (s *Store) UpsertSubject(sub model.Subject) error {
	_, err := s.db.Exec(
		`INSERT INTO subjects (subject_id, subject_name, description) VALUES (?, ?, ?)
		 ON CONFLICT(subject_id) DO UPDATE SET subject_name = ?, description = ?`,
		sub.SubjectID, sub.SubjectName, sub.Description, sub.SubjectName, sub.Description,
	)
	return err
}

// UpsertTopic inserts or replaces a topic.
func (s *Store) UpsertTopic(t model.Topic) error {
	_, err := s.db.Exec(
		`INSERT INTO topics (topic_id, subject_id, topic_name, description) VALUES (?, ?, ?, ?)
		 ON CONFLICT(topic_id) DO UPDATE SET subject_id = ?, topic_name = ?, description = ?`,
		t.TopicID, t.SubjectID, t.TopicName, t.Description, t.SubjectID, t.TopicName, t.Description,
	)
	return err
}

// UpsertSubtopic inserts or replaces a subtopic.
func (s *Store) UpsertSubtopic(st model.Subtopic) error {
	_, err := s.db.Exec(
		`INSERT INTO subtopics (subtopic_id, topic_id, subtopic_name, description) VALUES (?, ?, ?, ?)
		 ON CONFLICT(subtopic_id) DO UPDATE SET topic_id = ?, subtopic_name = ?, description = ?`,
		st.SubtopicID, st.TopicID, st.SubtopicName, st.Description, st.TopicID, st.SubtopicName, st.Description,
	)
	return err
}

// UpsertDifficultyLevel inserts or replaces a difficulty level.
func (s *Store) UpsertDifficultyLevel(d model.DifficultyLevel) error {
	_, err := s.db.Exec(
		`INSERT INTO difficulty_levels (level_id, level_name, level_value, subject_id, purpose,
		 characteristics, focus_area, steps_required, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(level_id) DO UPDATE SET level_name = ?, level_value = ?, subject_id = ?,
		 purpose = ?, characteristics = ?, focus_area = ?, steps_required = ?, active = ?`,
		d.LevelID, d.LevelName, d.LevelValue, d.SubjectID, d.Purpose,
		d.Characteristics, d.FocusArea, d.StepsRequired, d.Active,
		d.LevelName, d.LevelValue, d.SubjectID,
		d.Purpose, d.Characteristics, d.FocusArea, d.StepsRequired, d.Active,
	)
	return err
}

// ListSubjects returns subjects with a description, ordered by name.
func (s *Store) ListSubjects() ([]model.Subject, error) {
	rows, err := s.db.Query(
		`SELECT subject_id, subject_name, COALESCE(description, '') FROM subjects
		 WHERE description IS NOT NULL ORDER BY subject_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subjects []model.Subject
	for rows.Next() {
		var sub model.Subject
		if err := rows.Scan(&sub.SubjectID, &sub.SubjectName, &sub.Description); err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

// ListTopics returns a subject's topics with a description, ordered by name.
func (s *Store) ListTopics(subjectID int) ([]model.Topic, error) {
	rows, err := s.db.Query(
		`SELECT topic_id, subject_id, topic_name, COALESCE(description, '') FROM topics
		 WHERE subject_id = ? AND description IS NOT NULL ORDER BY topic_name`, subjectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.TopicID, &t.SubjectID, &t.TopicName, &t.Description); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// ListSubtopics returns a topic's subtopics with a description, ordered by name.
func (s *Store) ListSubtopics(topicID int) ([]model.Subtopic, error) {
	rows, err := s.db.Query(
		`SELECT subtopic_id, topic_id, subtopic_name, COALESCE(description, '') FROM subtopics
		 WHERE topic_id = ? AND description IS NOT NULL ORDER BY subtopic_name`, topicID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subtopics []model.Subtopic
	for rows.Next() {
		var st model.Subtopic
		if err := rows.Scan(&st.SubtopicID, &st.TopicID, &st.SubtopicName, &st.Description); err != nil {
			return nil, err
		}
		subtopics = append(subtopics, st)
	}
	return subtopics, rows.Err()
}

// ListDifficultyLevels returns a subject's active levels ordered by value.
func (s *Store) ListDifficultyLevels(subjectID int) ([]model.DifficultyLevel, error) {
	rows, err := s.db.Query(
		`SELECT level_id, level_name, level_value, subject_id, purpose, characteristics,
		 focus_area, steps_required, active
		 FROM difficulty_levels WHERE subject_id = ? AND active = 1 ORDER BY level_value`, subjectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []model.DifficultyLevel
	for rows.Next() {
		var d model.DifficultyLevel
		if err := rows.Scan(&d.LevelID, &d.LevelName, &d.LevelValue, &d.SubjectID, &d.Purpose,
			&d.Characteristics, &d.FocusArea, &d.StepsRequired, &d.Active); err != nil {
			return nil, err
		}
		levels = append(levels, d)
	}
	return levels, rows.Err()
}
