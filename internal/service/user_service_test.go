//go:build unit

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"go-writer-app/internal/auth"
	"go-writer-app/internal/data"
)

func newTestUserService(t *testing.T) (*UserService, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	db := sqlx.NewDb(mockDB, "mysql")
	svc := NewUserService(data.NewUserRepository(db))
	return svc, mock, func() { db.Close() }
}

func userColumns() []string {
	return []string{"id", "username", "email", "password_hash", "about_me", "timezone"}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("password mismatch never touches the store", func(t *testing.T) {
		svc, mock, teardown := newTestUserService(t)
		defer teardown()

		_, err := svc.CreateUser(ctx, UserInput{
			Username:        "alex",
			Password:        "secret-one",
			ConfirmPassword: "secret-two",
		})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := verr.Fields["ConfirmPassword"]; !ok {
			t.Errorf("expected ConfirmPassword in failed fields, got %v", verr.Fields)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected store interaction: %v", err)
		}
	})

	t.Run("duplicate username writes nothing", func(t *testing.T) {
		svc, mock, teardown := newTestUserService(t)
		defer teardown()

		rows := sqlmock.NewRows(userColumns()).AddRow(1, "alex", "", "hash", "", "UTC")
		mock.ExpectQuery(`SELECT .+ FROM users WHERE username`).WillReturnRows(rows)

		_, err := svc.CreateUser(ctx, UserInput{
			Username:        "alex",
			Password:        "secret",
			ConfirmPassword: "secret",
		})
		var uerr *UniquenessError
		if !errors.As(err, &uerr) {
			t.Fatalf("expected UniquenessError, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("stores a verifiable hash, never the password", func(t *testing.T) {
		svc, mock, teardown := newTestUserService(t)
		defer teardown()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE username`).
			WillReturnRows(sqlmock.NewRows(userColumns()))
		mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(2, 1))

		user, err := svc.CreateUser(ctx, UserInput{
			Username:        "alex",
			Password:        "correct horse battery",
			ConfirmPassword: "correct horse battery",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.PasswordHash == "correct horse battery" {
			t.Error("password stored in the clear")
		}
		if !auth.CheckPassword(user.PasswordHash, "correct horse battery") {
			t.Error("stored hash does not verify the password")
		}
		if user.Timezone != "UTC" {
			t.Errorf("expected default timezone UTC, got %q", user.Timezone)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	hash, err := auth.HashPassword("open sesame")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	t.Run("correct credentials succeed", func(t *testing.T) {
		svc, mock, teardown := newTestUserService(t)
		defer teardown()

		rows := sqlmock.NewRows(userColumns()).AddRow(1, "alex", "", hash, "", "UTC")
		mock.ExpectQuery(`SELECT .+ FROM users WHERE username`).WillReturnRows(rows)

		user, err := svc.Authenticate(ctx, "alex", "open sesame")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Username != "alex" {
			t.Errorf("unexpected user %q", user.Username)
		}
	})

	t.Run("wrong password fails", func(t *testing.T) {
		svc, mock, teardown := newTestUserService(t)
		defer teardown()

		rows := sqlmock.NewRows(userColumns()).AddRow(1, "alex", "", hash, "", "UTC")
		mock.ExpectQuery(`SELECT .+ FROM users WHERE username`).WillReturnRows(rows)

		if _, err := svc.Authenticate(ctx, "alex", "wrong"); !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("expected ErrBadCredentials, got %v", err)
		}
	})

	t.Run("unknown user fails the same way", func(t *testing.T) {
		svc, mock, teardown := newTestUserService(t)
		defer teardown()

		mock.ExpectQuery(`SELECT .+ FROM users WHERE username`).
			WillReturnRows(sqlmock.NewRows(userColumns()))

		if _, err := svc.Authenticate(ctx, "ghost", "whatever"); !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("expected ErrBadCredentials, got %v", err)
		}
	})
}

func TestLocalPubDate(t *testing.T) {
	t.Run("page without a date yields nil", func(t *testing.T) {
		local, err := LocalPubDate(&data.Page{}, "America/Chicago")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if local != nil {
			t.Errorf("expected nil, got %v", local)
		}
	})

	t.Run("stored UTC renders in the author zone", func(t *testing.T) {
		utc := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)
		page := &data.Page{PubDate: &utc}
		local, err := LocalPubDate(page, "America/Chicago")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// CDT is UTC-5 in July.
		if local.Hour() != 13 {
			t.Errorf("expected 13:00 local, got %02d:00", local.Hour())
		}
	})

	t.Run("wall clock input is normalized to UTC", func(t *testing.T) {
		page := &data.Page{}
		wall := time.Date(2025, 7, 1, 13, 0, 0, 0, time.UTC)
		if err := SetLocalPubDate(page, wall, "America/Chicago"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.PubDate == nil {
			t.Fatal("expected pub date set")
		}
		if page.PubDate.Hour() != 18 {
			t.Errorf("expected 18:00 UTC, got %02d:00", page.PubDate.Hour())
		}
		if page.PubDate.Location() != time.UTC {
			t.Errorf("expected UTC location, got %v", page.PubDate.Location())
		}
	})

	t.Run("bad zone name is an error", func(t *testing.T) {
		utc := time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)
		if _, err := LocalPubDate(&data.Page{PubDate: &utc}, "Mars/Olympus"); err == nil {
			t.Error("expected error for unknown zone")
		}
	})
}
