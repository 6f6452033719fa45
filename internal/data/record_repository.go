package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// RecordRepository provides database operations for writing-productivity
// log entries.
type RecordRepository struct {
	db sqlx.ExtContext
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// CreateRecord inserts a new record and sets its generated ID.
func (r *RecordRepository) CreateRecord(ctx context.Context, rec *Record) error {
	query := `INSERT INTO records (user_id, rec_date, words, notes) VALUES (:user_id, :rec_date, :words, :notes)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, rec)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created record id: %w", err)
	}
	rec.ID = id
	return nil
}

// RecordsForUser retrieves a user's records within the given window,
// most recent first.
func (r *RecordRepository) RecordsForUser(ctx context.Context, userID int64, since time.Time) ([]*Record, error) {
	var recs []*Record
	query := `SELECT id, user_id, rec_date, words, notes FROM records WHERE user_id = ? AND rec_date >= ? ORDER BY rec_date DESC`
	if err := sqlx.SelectContext(ctx, r.db, &recs, query, userID, since); err != nil {
		return nil, fmt.Errorf("failed to get records for user: %w", err)
	}
	return recs, nil
}
