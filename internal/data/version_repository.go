package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// VersionRepository provides append-only storage for page snapshots.
// Versions are inserted once, never updated or deleted.
type VersionRepository struct {
	db sqlx.ExtContext
}

// NewVersionRepository creates a new VersionRepository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// WithTx returns a copy of the repository that runs every operation on
// the given transaction.
func (r *VersionRepository) WithTx(tx *sqlx.Tx) *VersionRepository {
	return &VersionRepository{db: tx}
}

// CreateVersion inserts a snapshot and copies its tag set into the
// version tag join table.
func (r *VersionRepository) CreateVersion(ctx context.Context, version *PageVersion) error {
	query := `INSERT INTO page_versions (original_id, title, slug, dir_path, path, parent_id, template, banner, body, notes, summary, sidebar, user_id, sort, pub_date, published, edit_date)
		VALUES (:original_id, :title, :slug, :dir_path, :path, :parent_id, :template, :banner, :body, :notes, :summary, :sidebar, :user_id, :sort, :pub_date, :published, :edit_date)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, version)
	if err != nil {
		return fmt.Errorf("failed to create page version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created version id: %w", err)
	}
	version.ID = id

	for _, tag := range version.Tags {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO page_version_tags (page_version_id, tag_id) VALUES (?, ?)`, version.ID, tag.ID); err != nil {
			return fmt.Errorf("failed to attach tag to version: %w", err)
		}
	}
	return nil
}

// VersionsFor retrieves the snapshot history of a page, most recent
// first.
func (r *VersionRepository) VersionsFor(ctx context.Context, pageID int64) ([]*PageVersion, error) {
	var versions []*PageVersion
	query := `SELECT id, original_id, title, slug, dir_path, path, parent_id, template, banner, body, notes, summary, sidebar, user_id, sort, pub_date, published, edit_date
		FROM page_versions WHERE original_id = ? ORDER BY edit_date DESC, id DESC`
	if err := sqlx.SelectContext(ctx, r.db, &versions, query, pageID); err != nil {
		return nil, fmt.Errorf("failed to get versions for page: %w", err)
	}
	return versions, nil
}
