package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LinkRepository provides database operations for external link cards.
type LinkRepository struct {
	db sqlx.ExtContext
}

// NewLinkRepository creates a new LinkRepository.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// CreateLink inserts a new link and sets its generated ID.
func (r *LinkRepository) CreateLink(ctx context.Context, link *Link) error {
	query := `INSERT INTO links (title, url, description, sort) VALUES (:title, :url, :description, :sort)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, link)
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created link id: %w", err)
	}
	link.ID = id
	return nil
}

// GetAll retrieves all links ordered by (sort, title).
func (r *LinkRepository) GetAll(ctx context.Context) ([]*Link, error) {
	var links []*Link
	query := `SELECT id, title, url, description, sort FROM links ORDER BY sort ASC, title ASC`
	if err := sqlx.SelectContext(ctx, r.db, &links, query); err != nil {
		return nil, fmt.Errorf("failed to get all links: %w", err)
	}
	return links, nil
}

// DeleteLink removes a link by ID.
func (r *LinkRepository) DeleteLink(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no link found to delete with id %d: %w", id, ErrNotFound)
	}
	return nil
}
