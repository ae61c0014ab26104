package store

import (
	"database/sql"
	"time"

	"github.com/lvnplus/qgen/internal/model"
)

const aiConfigColumns = `id, name, provider, model_name, api_key, max_tokens, temperature, is_default, created_at`

func scanAIConfig(row interface{ Scan(...any) error }) (*model.AIConfig, error) {
	var c model.AIConfig
	err := row.Scan(&c.ID, &c.Name, &c.Provider, &c.ModelName, &c.APIKey,
		&c.MaxTokens, &c.Temperature, &c.IsDefault, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateAIConfig inserts an AI configuration. When the new config is marked
// default, every other config loses the flag first.
func (s *Store) CreateAIConfig(c model.AIConfig) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if c.IsDefault {
		if _, err := tx.Exec(`UPDATE ai_config SET is_default = 0`); err != nil {
			return err
		}
	}
	_, err = tx.Exec(
		`INSERT INTO ai_config (`+aiConfigColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Provider, c.ModelName, c.APIKey,
		c.MaxTokens, c.Temperature, c.IsDefault, time.Now(),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateAIConfig overwrites an AI configuration.
func (s *Store) UpdateAIConfig(c model.AIConfig) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if c.IsDefault {
		if _, err := tx.Exec(`UPDATE ai_config SET is_default = 0 WHERE id != ?`, c.ID); err != nil {
			return err
		}
	}
	_, err = tx.Exec(
		`UPDATE ai_config SET name = ?, provider = ?, model_name = ?, api_key = ?,
		 max_tokens = ?, temperature = ?, is_default = ? WHERE id = ?`,
		c.Name, c.Provider, c.ModelName, c.APIKey,
		c.MaxTokens, c.Temperature, c.IsDefault, c.ID,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteAIConfig removes an AI configuration.
func (s *Store) DeleteAIConfig(id string) error {
	_, err := s.db.Exec(`DELETE FROM ai_config WHERE id = ?`, id)
	return err
}

// GetAIConfig returns a configuration by id, or nil when absent.
func (s *Store) GetAIConfig(id string) (*model.AIConfig, error) {
	row := s.db.QueryRow(`SELECT `+aiConfigColumns+` FROM ai_config WHERE id = ?`, id)
	return scanAIConfig(row)
}

// GetDefaultAIConfig returns the default configuration, or nil when none is set.
func (s *Store) GetDefaultAIConfig() (*model.AIConfig, error) {
	row := s.db.QueryRow(`SELECT ` + aiConfigColumns + ` FROM ai_config WHERE is_default = 1 LIMIT 1`)
	return scanAIConfig(row)
}

// ListAIConfigs returns all configurations, newest first.
func (s *Store) ListAIConfigs() ([]model.AIConfig, error) {
	rows, err := s.db.Query(`SELECT ` + aiConfigColumns + ` FROM ai_config ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var configs []model.AIConfig
	for rows.Next() {
		c, err := scanAIConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *c)
	}
	return configs, rows.Err()
}

// CreateAIProvider inserts a provider.
func (s *Store) CreateAIProvider(p model.AIProvider) error {
	_, err := s.db.Exec(
		`INSERT INTO ai_providers (id, name, description, api_base_url, active) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.APIBaseURL, p.Active,
	)
	return err
}

// UpdateAIProvider overwrites a provider.
func (s *Store) UpdateAIProvider(p model.AIProvider) error {
	_, err := s.db.Exec(
		`UPDATE ai_providers SET name = ?, description = ?, api_base_url = ?, active = ? WHERE id = ?`,
		p.Name, p.Description, p.APIBaseURL, p.Active, p.ID,
	)
	return err
}

// GetAIProvider returns a provider by id, or nil when absent.
func (s *Store) GetAIProvider(id string) (*model.AIProvider, error) {
	var p model.AIProvider
	err := s.db.QueryRow(
		`SELECT id, name, description, api_base_url, active FROM ai_providers WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.APIBaseURL, &p.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListAIProviders returns all providers ordered by name.
func (s *Store) ListAIProviders() ([]model.AIProvider, error) {
	rows, err := s.db.Query(`SELECT id, name, description, api_base_url, active FROM ai_providers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var providers []model.AIProvider
	for rows.Next() {
		var p model.AIProvider
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.APIBaseURL, &p.Active); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// CreateAIModel inserts a model.
func (s *Store) CreateAIModel(m model.AIModel) error {
	_, err := s.db.Exec(
		`INSERT INTO ai_models (id, provider_id, name, description, max_tokens, supports_functions, supports_vision, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProviderID, m.Name, m.Description, m.MaxTokens,
		m.SupportsFunctions, m.SupportsVision, m.Active,
	)
	return err
}

// UpdateAIModel overwrites a model.
func (s *Store) UpdateAIModel(m model.AIModel) error {
	_, err := s.db.Exec(
		`UPDATE ai_models SET provider_id = ?, name = ?, description = ?, max_tokens = ?,
		 supports_functions = ?, supports_vision = ?, active = ? WHERE id = ?`,
		m.ProviderID, m.Name, m.Description, m.MaxTokens,
		m.SupportsFunctions, m.SupportsVision, m.Active, m.ID,
	)
	return err
}

// ListActiveAIModels returns active models ordered by provider then name.
func (s *Store) ListActiveAIModels() ([]model.AIModel, error) {
	rows, err := s.db.Query(
		`SELECT id, provider_id, name, description, max_tokens, supports_functions, supports_vision, active
		 FROM ai_models WHERE active = 1 ORDER BY provider_id, name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var models []model.AIModel
	for rows.Next() {
		var m model.AIModel
		if err := rows.Scan(&m.ID, &m.ProviderID, &m.Name, &m.Description, &m.MaxTokens,
			&m.SupportsFunctions, &m.SupportsVision, &m.Active); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}
