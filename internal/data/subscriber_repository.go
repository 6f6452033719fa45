package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SubscriberRepository provides database operations for mailing-list
// subscribers.
type SubscriberRepository struct {
	db sqlx.ExtContext
}

// NewSubscriberRepository creates a new SubscriberRepository.
func NewSubscriberRepository(db *sqlx.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// FindByEmail finds a subscriber by email. A nil result with nil error
// means no subscriber with that address exists.
func (r *SubscriberRepository) FindByEmail(ctx context.Context, email string) (*Subscriber, error) {
	var sub Subscriber
	query := `SELECT id, email, first_name, last_name, subscription, sub_date FROM subscribers WHERE email = ?`
	if err := sqlx.GetContext(ctx, r.db, &sub, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscriber by email: %w", err)
	}
	return &sub, nil
}

// CreateSubscriber inserts a new subscriber and sets its generated ID.
func (r *SubscriberRepository) CreateSubscriber(ctx context.Context, sub *Subscriber) error {
	query := `INSERT INTO subscribers (email, first_name, last_name, subscription, sub_date) VALUES (:email, :first_name, :last_name, :subscription, :sub_date)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, sub)
	if err != nil {
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created subscriber id: %w", err)
	}
	sub.ID = id
	return nil
}

// GetAll retrieves all subscribers ordered by subscription date.
func (r *SubscriberRepository) GetAll(ctx context.Context) ([]*Subscriber, error) {
	var subs []*Subscriber
	query := `SELECT id, email, first_name, last_name, subscription, sub_date FROM subscribers ORDER BY sub_date ASC`
	if err := sqlx.SelectContext(ctx, r.db, &subs, query); err != nil {
		return nil, fmt.Errorf("failed to get all subscribers: %w", err)
	}
	return subs, nil
}

// DeleteSubscriber removes a subscriber by ID (unsubscribe).
func (r *SubscriberRepository) DeleteSubscriber(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no subscriber found to delete with id %d: %w", id, ErrNotFound)
	}
	return nil
}
