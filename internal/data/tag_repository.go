package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TagRepository provides database operations for tags.
type TagRepository struct {
	db sqlx.ExtContext
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindByName finds a tag by exact, case-sensitive name. A nil result
// with nil error means the tag does not exist.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	// The tags.name column carries a binary collation, so this comparison
	// is case-sensitive.
	query := `SELECT id, name FROM tags WHERE name = ?`
	if err := sqlx.GetContext(ctx, r.db, &tag, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find tag by name: %w", err)
	}
	return &tag, nil
}

// CreateTag inserts a new tag and sets its generated ID.
func (r *TagRepository) CreateTag(ctx context.Context, tag *Tag) error {
	res, err := sqlx.NamedExecContext(ctx, r.db, `INSERT INTO tags (name) VALUES (:name)`, tag)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created tag id: %w", err)
	}
	tag.ID = id
	return nil
}

// GetAll retrieves all tags ordered by name.
func (r *TagRepository) GetAll(ctx context.Context) ([]*Tag, error) {
	var tags []*Tag
	if err := sqlx.SelectContext(ctx, r.db, &tags, `SELECT id, name FROM tags ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("failed to get all tags: %w", err)
	}
	return tags, nil
}
