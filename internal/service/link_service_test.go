//go:build unit

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"go-writer-app/internal/data"
)

func newTestLinkService(t *testing.T) (*LinkService, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	db := sqlx.NewDb(mockDB, "mysql")
	svc := NewLinkService(data.NewLinkRepository(db))
	return svc, mock, func() { db.Close() }
}

func TestCreateLink(t *testing.T) {
	ctx := context.Background()

	t.Run("missing title and url never touch the store", func(t *testing.T) {
		svc, mock, teardown := newTestLinkService(t)
		defer teardown()

		_, err := svc.CreateLink(ctx, &data.Link{})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := verr.Fields["Title"]; !ok {
			t.Error("expected Title in validation fields")
		}
		if _, ok := verr.Fields["URL"]; !ok {
			t.Error("expected URL in validation fields")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected store interaction: %v", err)
		}
	})

	t.Run("non-http url is rejected", func(t *testing.T) {
		svc, mock, teardown := newTestLinkService(t)
		defer teardown()

		_, err := svc.CreateLink(ctx, &data.Link{Title: "FTP Mirror", URL: "ftp://mirror.example.com"})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected store interaction: %v", err)
		}
	})

	t.Run("valid link inserts and gains an id", func(t *testing.T) {
		svc, mock, teardown := newTestLinkService(t)
		defer teardown()

		mock.ExpectExec(`INSERT INTO links`).WillReturnResult(sqlmock.NewResult(4, 1))

		link, err := svc.CreateLink(ctx, &data.Link{Title: "A Friend's Blog", URL: "https://friend.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if link.ID != 4 {
			t.Errorf("expected id 4, got %d", link.ID)
		}
	})
}

func TestCreateRecord(t *testing.T) {
	ctx := context.Background()

	newSvc := func(t *testing.T) (*RecordService, sqlmock.Sqlmock, func()) {
		t.Helper()
		mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		db := sqlx.NewDb(mockDB, "mysql")
		return NewRecordService(data.NewRecordRepository(db)), mock, func() { db.Close() }
	}

	t.Run("missing user never touches the store", func(t *testing.T) {
		svc, mock, teardown := newSvc(t)
		defer teardown()

		_, err := svc.CreateRecord(ctx, &data.Record{Words: 500})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected store interaction: %v", err)
		}
	})

	t.Run("negative word count is rejected", func(t *testing.T) {
		svc, _, teardown := newSvc(t)
		defer teardown()

		_, err := svc.CreateRecord(ctx, &data.Record{UserID: 1, Words: -10})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("zero date is filled in before insert", func(t *testing.T) {
		svc, mock, teardown := newSvc(t)
		defer teardown()

		mock.ExpectExec(`INSERT INTO records`).WillReturnResult(sqlmock.NewResult(9, 1))

		rec, err := svc.CreateRecord(ctx, &data.Record{UserID: 1, Words: 750})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.ID != 9 {
			t.Errorf("expected id 9, got %d", rec.ID)
		}
		if rec.RecDate.IsZero() {
			t.Error("expected rec_date to be filled with the current time")
		}
		if time.Since(rec.RecDate) > time.Minute {
			t.Errorf("rec_date too far in the past: %v", rec.RecDate)
		}
	})
}
