package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

const pageColumns = `id, title, slug, dir_path, path, parent_id, template, banner, body, notes, summary, sidebar, user_id, sort, pub_date, published, edit_date`

// PageRepository provides database operations for pages and their tag
// associations using sqlx.
type PageRepository struct {
	db sqlx.ExtContext
}

// NewPageRepository creates a new PageRepository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

// WithTx returns a copy of the repository that runs every operation on
// the given transaction.
func (r *PageRepository) WithTx(tx *sqlx.Tx) *PageRepository {
	return &PageRepository{db: tx}
}

// CreatePage inserts a new page and sets its generated ID.
func (r *PageRepository) CreatePage(ctx context.Context, page *Page) error {
	query := `INSERT INTO pages (title, slug, dir_path, path, parent_id, template, banner, body, notes, summary, sidebar, user_id, sort, pub_date, published, edit_date)
		VALUES (:title, :slug, :dir_path, :path, :parent_id, :template, :banner, :body, :notes, :summary, :sidebar, :user_id, :sort, :pub_date, :published, :edit_date)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, page)
	if err != nil {
		return fmt.Errorf("failed to execute create page query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created page id: %w", err)
	}
	page.ID = id
	return nil
}

// GetPageByID retrieves a single page by its ID.
func (r *PageRepository) GetPageByID(ctx context.Context, id int64) (*Page, error) {
	var page Page
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = ?`
	if err := sqlx.GetContext(ctx, r.db, &page, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get page by id: %w", err)
	}
	return &page, nil
}

// GetPageByPath retrieves a single page by its canonical path.
func (r *PageRepository) GetPageByPath(ctx context.Context, path string) (*Page, error) {
	var page Page
	query := `SELECT ` + pageColumns + ` FROM pages WHERE path = ?`
	if err := sqlx.GetContext(ctx, r.db, &page, query, path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page with path '%s': %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get page by path: %w", err)
	}
	return &page, nil
}

// UpdatePage overwrites all mutable fields of an existing page.
func (r *PageRepository) UpdatePage(ctx context.Context, page *Page) error {
	query := `UPDATE pages SET title = :title, slug = :slug, dir_path = :dir_path, path = :path, parent_id = :parent_id, template = :template, banner = :banner, body = :body, notes = :notes, summary = :summary, sidebar = :sidebar, user_id = :user_id, sort = :sort, pub_date = :pub_date, published = :published, edit_date = :edit_date WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.db, query, page)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no page found to update with id %d: %w", page.ID, ErrNotFound)
	}
	return nil
}

// UpdatePagePath rewrites only the derived path columns of a page. Used
// by the subtree cascade after a rename or re-parent.
func (r *PageRepository) UpdatePagePath(ctx context.Context, id int64, path, dirPath string) error {
	query := `UPDATE pages SET path = ?, dir_path = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, path, dirPath, id); err != nil {
		return fmt.Errorf("failed to update page path: %w", err)
	}
	return nil
}

// Children retrieves the pages whose parent is parentID (nil for root
// pages), ordered by (sort, pub_date, title). The two flags optionally
// restrict the set to published pages and to chapter/post templates.
func (r *PageRepository) Children(ctx context.Context, parentID *int64, publishedOnly, chapterPostOnly bool) ([]*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE `
	var args []interface{}
	if parentID == nil {
		query += `parent_id IS NULL`
	} else {
		query += `parent_id = ?`
		args = append(args, *parentID)
	}
	if publishedOnly {
		query += ` AND published = ?`
		args = append(args, true)
	}
	if chapterPostOnly {
		query += ` AND template IN (?, ?)`
		args = append(args, TemplateChapter, TemplatePost)
	}
	query += ` ORDER BY sort ASC, pub_date ASC, title ASC`

	var pages []*Page
	if err := sqlx.SelectContext(ctx, r.db, &pages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get child pages: %w", err)
	}
	return pages, nil
}

// ListPages retrieves pages filtered by published state, ordered for the
// admin index by (dir_path, sort, title).
func (r *PageRepository) ListPages(ctx context.Context, published bool) ([]*Page, error) {
	var pages []*Page
	query := `SELECT ` + pageColumns + ` FROM pages WHERE published = ? ORDER BY dir_path ASC, sort ASC, title ASC`
	if err := sqlx.SelectContext(ctx, r.db, &pages, query, published); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// GetTagsForPage retrieves the tags attached to a page, ordered by name.
func (r *PageRepository) GetTagsForPage(ctx context.Context, pageID int64) ([]Tag, error) {
	var tags []Tag
	query := `SELECT t.id, t.name FROM tags t JOIN page_tags pt ON pt.tag_id = t.id WHERE pt.page_id = ? ORDER BY t.name ASC`
	if err := sqlx.SelectContext(ctx, r.db, &tags, query, pageID); err != nil {
		return nil, fmt.Errorf("failed to get tags for page: %w", err)
	}
	return tags, nil
}

// ReplaceTags replaces the page's tag associations with the given set.
func (r *PageRepository) ReplaceTags(ctx context.Context, pageID int64, tagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM page_tags WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("failed to clear page tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO page_tags (page_id, tag_id) VALUES (?, ?)`, pageID, tagID); err != nil {
			return fmt.Errorf("failed to attach tag %d: %w", tagID, err)
		}
	}
	return nil
}
