package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DefinitionRepository provides database operations for glossary entries.
type DefinitionRepository struct {
	db sqlx.ExtContext
}

// NewDefinitionRepository creates a new DefinitionRepository.
func NewDefinitionRepository(db *sqlx.DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

// GetDefinitionByID retrieves a definition by ID.
func (r *DefinitionRepository) GetDefinitionByID(ctx context.Context, id int64) (*Definition, error) {
	var def Definition
	query := `SELECT id, name, body, hidden_body, dtype, tag_id, page_id FROM definitions WHERE id = ?`
	if err := sqlx.GetContext(ctx, r.db, &def, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("definition with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get definition by id: %w", err)
	}
	return &def, nil
}

// CreateDefinition inserts a new definition and sets its generated ID.
func (r *DefinitionRepository) CreateDefinition(ctx context.Context, def *Definition) error {
	query := `INSERT INTO definitions (name, body, hidden_body, dtype, tag_id, page_id) VALUES (:name, :body, :hidden_body, :dtype, :tag_id, :page_id)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, def)
	if err != nil {
		return fmt.Errorf("failed to create definition: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created definition id: %w", err)
	}
	def.ID = id
	return nil
}

// UpdateDefinition overwrites an existing definition.
func (r *DefinitionRepository) UpdateDefinition(ctx context.Context, def *Definition) error {
	query := `UPDATE definitions SET name = :name, body = :body, hidden_body = :hidden_body, dtype = :dtype, tag_id = :tag_id, page_id = :page_id WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, def)
	if err != nil {
		return fmt.Errorf("failed to update definition: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no definition found to update with id %d: %w", def.ID, ErrNotFound)
	}
	return nil
}

// GetAll retrieves all definitions ordered by name.
func (r *DefinitionRepository) GetAll(ctx context.Context) ([]*Definition, error) {
	var defs []*Definition
	query := `SELECT id, name, body, hidden_body, dtype, tag_id, page_id FROM definitions ORDER BY name ASC`
	if err := sqlx.SelectContext(ctx, r.db, &defs, query); err != nil {
		return nil, fmt.Errorf("failed to get all definitions: %w", err)
	}
	return defs, nil
}
