package store

import (
	"github.com/google/uuid"

	"github.com/lvnplus/qgen/internal/model"
)

// CreateCategory inserts a variable category.
func (s *Store) CreateCategory(c model.VariableCategory) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO variable_categories (id, name, description, icon, color, sort_order, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Icon, c.Color, c.SortOrder, c.CreatedBy,
	)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// ListCategories returns categories ordered by sort order.
func (s *Store) ListCategories() ([]model.VariableCategory, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, icon, color, sort_order, created_by
		 FROM variable_categories ORDER BY sort_order`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []model.VariableCategory
	for rows.Next() {
		var c model.VariableCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color, &c.SortOrder, &c.CreatedBy); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory overwrites a category's fields.
func (s *Store) UpdateCategory(c model.VariableCategory) error {
	_, err := s.db.Exec(
		`UPDATE variable_categories SET name = ?, description = ?, icon = ?, color = ?, sort_order = ?
		 WHERE id = ?`,
		c.Name, c.Description, c.Icon, c.Color, c.SortOrder, c.ID,
	)
	return err
}

// DeleteCategory removes a category and its variable definitions.
func (s *Store) DeleteCategory(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM variable_definitions WHERE category_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM variable_categories WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

const variableDefColumns = `id, category_id, name, display_name, description, placeholder,
	variable_type, default_value, validation_rules, options, is_required, sort_order, created_by`

// CreateVariableDefinition inserts a variable definition.
func (s *Store) CreateVariableDefinition(v model.VariableDefinition) (string, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO variable_definitions (`+variableDefColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.CategoryID, v.Name, v.DisplayName, v.Description, v.Placeholder,
		v.VariableType, v.DefaultValue, v.ValidationRules, v.Options,
		v.IsRequired, v.SortOrder, v.CreatedBy,
	)
	if err != nil {
		return "", err
	}
	return v.ID, nil
}

// ListVariableDefinitions returns the definitions in one category.
func (s *Store) ListVariableDefinitions(categoryID string) ([]model.VariableDefinition, error) {
	rows, err := s.db.Query(
		`SELECT `+variableDefColumns+` FROM variable_definitions
		 WHERE category_id = ? ORDER BY sort_order`, categoryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var defs []model.VariableDefinition
	for rows.Next() {
		var v model.VariableDefinition
		if err := rows.Scan(&v.ID, &v.CategoryID, &v.Name, &v.DisplayName, &v.Description, &v.Placeholder,
			&v.VariableType, &v.DefaultValue, &v.ValidationRules, &v.Options,
			&v.IsRequired, &v.SortOrder, &v.CreatedBy); err != nil {
			return nil, err
		}
		defs = append(defs, v)
	}
	return defs, rows.Err()
}

// UpdateVariableDefinition overwrites a definition's fields.
func (s *Store) UpdateVariableDefinition(v model.VariableDefinition) error {
	_, err := s.db.Exec(
		`UPDATE variable_definitions SET category_id = ?, name = ?, display_name = ?, description = ?,
		 placeholder = ?, variable_type = ?, default_value = ?, validation_rules = ?, options = ?,
		 is_required = ?, sort_order = ? WHERE id = ?`,
		v.CategoryID, v.Name, v.DisplayName, v.Description, v.Placeholder,
		v.VariableType, v.DefaultValue, v.ValidationRules, v.Options,
		v.IsRequired, v.SortOrder, v.ID,
	)
	return err
}

// DeleteVariableDefinition removes a definition and any template usage rows.
func (s *Store) DeleteVariableDefinition(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM template_variable_usage WHERE variable_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM variable_definitions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTemplateVariableUsage returns a template's variable associations in sort order.
func (s *Store) GetTemplateVariableUsage(templateID string) ([]model.TemplateVariableUsage, error) {
	rows, err := s.db.Query(
		`SELECT template_id, variable_id, sort_order FROM template_variable_usage
		 WHERE template_id = ? ORDER BY sort_order`, templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var usage []model.TemplateVariableUsage
	for rows.Next() {
		var u model.TemplateVariableUsage
		if err := rows.Scan(&u.TemplateID, &u.VariableID, &u.SortOrder); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// SetTemplateVariableUsage replaces a template's variable associations.
// Sort order follows slice position.
func (s *Store) SetTemplateVariableUsage(templateID string, variableIDs []string) ([]model.TemplateVariableUsage, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM template_variable_usage WHERE template_id = ?`, templateID); err != nil {
		return nil, err
	}

	usage := make([]model.TemplateVariableUsage, 0, len(variableIDs))
	for i, variableID := range variableIDs {
		if _, err := tx.Exec(
			`INSERT INTO template_variable_usage (template_id, variable_id, sort_order) VALUES (?, ?, ?)`,
			templateID, variableID, i,
		); err != nil {
			return nil, err
		}
		usage = append(usage, model.TemplateVariableUsage{
			TemplateID: templateID,
			VariableID: variableID,
			SortOrder:  i,
		})
	}
	return usage, tx.Commit()
}
