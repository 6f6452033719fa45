package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository provides database operations for administrator accounts.
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByID retrieves a user by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `SELECT id, username, email, password_hash, about_me, timezone FROM users WHERE id = ?`
	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// FindByUsername finds a user by username. A nil result with nil error
// means no such user exists.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password_hash, about_me, timezone FROM users WHERE username = ?`
	if err := sqlx.GetContext(ctx, r.db, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

// FindByEmail finds a user by email. A nil result with nil error means
// no such user exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password_hash, about_me, timezone FROM users WHERE email = ?`
	if err := sqlx.GetContext(ctx, r.db, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new user and sets its generated ID.
func (r *UserRepository) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (username, email, password_hash, about_me, timezone) VALUES (:username, :email, :password_hash, :about_me, :timezone)`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read created user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetAll retrieves all users ordered by username.
func (r *UserRepository) GetAll(ctx context.Context) ([]*User, error) {
	var users []*User
	query := `SELECT id, username, email, password_hash, about_me, timezone FROM users ORDER BY username ASC`
	if err := sqlx.SelectContext(ctx, r.db, &users, query); err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}
