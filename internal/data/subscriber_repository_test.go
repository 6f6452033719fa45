//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func setupSubscriberTest(t *testing.T) (*SubscriberRepository, func()) {
	t.Helper()

	dsn := "file::memory:"
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	schema := `
	CREATE TABLE subscribers (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT,
		last_name TEXT,
		subscription TEXT NOT NULL DEFAULT 'all',
		sub_date TIMESTAMP NOT NULL
	);`
	db.MustExec(schema)

	repo := NewSubscriberRepository(db)

	teardown := func() {
		db.Close()
	}

	return repo, teardown
}

func TestSubscriberRepository_CreateAndFind(t *testing.T) {
	repo, teardown := setupSubscriberTest(t)
	defer teardown()
	ctx := context.Background()

	first := "Alex"
	sub := &Subscriber{
		Email:        "reader@example.com",
		FirstName:    &first,
		Subscription: "blog,news",
		SubDate:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateSubscriber(ctx, sub); err != nil {
		t.Fatalf("failed to create subscriber: %v", err)
	}
	if sub.ID == 0 {
		t.Fatal("expected non-zero id after create")
	}

	found, err := repo.FindByEmail(ctx, "reader@example.com")
	if err != nil {
		t.Fatalf("failed to find subscriber: %v", err)
	}
	if found == nil || found.Subscription != "blog,news" {
		t.Errorf("unexpected subscriber %+v", found)
	}
	if found.FirstName == nil || *found.FirstName != "Alex" {
		t.Errorf("expected first name Alex, got %v", found.FirstName)
	}

	missing, err := repo.FindByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error on miss: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil on miss, got %+v", missing)
	}
}

func TestSubscriberRepository_GetAllOrder(t *testing.T) {
	repo, teardown := setupSubscriberTest(t)
	defer teardown()
	ctx := context.Background()

	for i, email := range []string{"late@example.com", "early@example.com"} {
		sub := &Subscriber{
			Email:        email,
			Subscription: "all",
			SubDate:      time.Date(2025, 6, 10-9*i, 0, 0, 0, 0, time.UTC),
		}
		if err := repo.CreateSubscriber(ctx, sub); err != nil {
			t.Fatalf("failed to create subscriber: %v", err)
		}
	}

	subs, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to get subscribers: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(subs))
	}
	if subs[0].Email != "early@example.com" {
		t.Errorf("expected oldest first, got %s", subs[0].Email)
	}
}

func TestSubscriberRepository_Delete(t *testing.T) {
	repo, teardown := setupSubscriberTest(t)
	defer teardown()
	ctx := context.Background()

	sub := &Subscriber{
		Email:        "leaving@example.com",
		Subscription: "all",
		SubDate:      time.Now().UTC(),
	}
	if err := repo.CreateSubscriber(ctx, sub); err != nil {
		t.Fatalf("failed to create subscriber: %v", err)
	}

	if err := repo.DeleteSubscriber(ctx, sub.ID); err != nil {
		t.Fatalf("failed to delete subscriber: %v", err)
	}
	found, err := repo.FindByEmail(ctx, "leaving@example.com")
	if err != nil {
		t.Fatalf("unexpected error after delete: %v", err)
	}
	if found != nil {
		t.Errorf("expected subscriber gone, got %+v", found)
	}

	if err := repo.DeleteSubscriber(ctx, sub.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
