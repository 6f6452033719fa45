//go:build unit

package tree

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-writer-app/internal/data"
)

func TestAncestors(t *testing.T) {
	ctx := context.Background()

	t.Run("root page has no ancestors", func(t *testing.T) {
		store := newMockPageStore()
		nav := NewNavigator(store)

		page := &data.Page{ID: 1, Slug: "home"}
		ancestors, err := nav.Ancestors(ctx, page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ancestors) != 0 {
			t.Errorf("expected no ancestors, got %d", len(ancestors))
		}
	})

	t.Run("ordered nearest parent first", func(t *testing.T) {
		book := &data.Page{ID: 1, Slug: "book"}
		part := &data.Page{ID: 2, Slug: "part", ParentID: int64Ptr(1)}
		chapter := &data.Page{ID: 3, Slug: "ch1", ParentID: int64Ptr(2)}
		store := newMockPageStore(book, part, chapter)
		nav := NewNavigator(store)

		ancestors, err := nav.Ancestors(ctx, chapter)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ancestors) != 2 {
			t.Fatalf("expected 2 ancestors, got %d", len(ancestors))
		}
		if ancestors[0].ID != 2 || ancestors[1].ID != 1 {
			t.Errorf("expected ancestors [2 1], got [%d %d]", ancestors[0].ID, ancestors[1].ID)
		}
	})

	t.Run("dangling parent yields ReferenceError", func(t *testing.T) {
		store := newMockPageStore()
		nav := NewNavigator(store)

		page := &data.Page{ID: 5, Slug: "lost", ParentID: int64Ptr(42)}
		_, err := nav.Ancestors(ctx, page)
		var refErr *ReferenceError
		if !errors.As(err, &refErr) {
			t.Fatalf("expected ReferenceError, got %v", err)
		}
	})

	t.Run("cyclic chain yields ReferenceError", func(t *testing.T) {
		a := &data.Page{ID: 1, Slug: "a", ParentID: int64Ptr(2)}
		b := &data.Page{ID: 2, Slug: "b", ParentID: int64Ptr(1)}
		store := newMockPageStore(a, b)
		nav := NewNavigator(store)

		_, err := nav.Ancestors(ctx, a)
		var refErr *ReferenceError
		if !errors.As(err, &refErr) {
			t.Fatalf("expected ReferenceError, got %v", err)
		}
	})
}

func TestSiblingOrder(t *testing.T) {
	ctx := context.Background()

	day := func(d int) *time.Time {
		ts := time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}

	parent := &data.Page{ID: 1, Slug: "blog", Template: data.TemplateBlog, Published: true}
	// Sort breaks ties first, then pub date, then title.
	first := &data.Page{ID: 2, Title: "Zebra", Slug: "zebra", ParentID: int64Ptr(1), Template: data.TemplatePost, Published: true, Sort: 10, PubDate: day(5)}
	second := &data.Page{ID: 3, Title: "Apple", Slug: "apple", ParentID: int64Ptr(1), Template: data.TemplatePost, Published: true, Sort: 75, PubDate: day(1)}
	third := &data.Page{ID: 4, Title: "Mango", Slug: "mango", ParentID: int64Ptr(1), Template: data.TemplatePost, Published: true, Sort: 75, PubDate: day(3)}
	fourth := &data.Page{ID: 5, Title: "Pear", Slug: "pear", ParentID: int64Ptr(1), Template: data.TemplatePost, Published: true, Sort: 75, PubDate: day(3)}
	draft := &data.Page{ID: 6, Title: "Draft", Slug: "draft", ParentID: int64Ptr(1), Template: data.TemplatePost, Published: false, Sort: 1}
	store := newMockPageStore(parent, first, second, third, fourth, draft)
	nav := NewNavigator(store)

	siblings, err := nav.PubSiblings(ctx, third, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{2, 3, 4, 5}
	if len(siblings) != len(want) {
		t.Fatalf("expected %d siblings, got %d", len(want), len(siblings))
	}
	for i, id := range want {
		if siblings[i].ID != id {
			t.Errorf("position %d: expected page %d, got %d", i, id, siblings[i].ID)
		}
	}
}

func TestNextPrevPubSibling(t *testing.T) {
	ctx := context.Background()

	parent := &data.Page{ID: 1, Slug: "story", Template: data.TemplateStory, Published: true}
	ch1 := &data.Page{ID: 2, Title: "One", Slug: "one", ParentID: int64Ptr(1), Template: data.TemplateChapter, Published: true, Sort: 1}
	ch2 := &data.Page{ID: 3, Title: "Two", Slug: "two", ParentID: int64Ptr(1), Template: data.TemplateChapter, Published: true, Sort: 2}
	ch3 := &data.Page{ID: 4, Title: "Three", Slug: "three", ParentID: int64Ptr(1), Template: data.TemplateChapter, Published: true, Sort: 3}
	store := newMockPageStore(parent, ch1, ch2, ch3)
	nav := NewNavigator(store)

	t.Run("middle page has both neighbors", func(t *testing.T) {
		next, err := nav.NextPubSibling(ctx, ch2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next == nil || next.ID != 4 {
			t.Errorf("expected next sibling 4, got %+v", next)
		}
		prev, err := nav.PrevPubSibling(ctx, ch2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev == nil || prev.ID != 2 {
			t.Errorf("expected previous sibling 2, got %+v", prev)
		}
	})

	t.Run("first page has no previous", func(t *testing.T) {
		prev, err := nav.PrevPubSibling(ctx, ch1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev != nil {
			t.Errorf("expected nil previous sibling, got %+v", prev)
		}
	})

	t.Run("last page has no next", func(t *testing.T) {
		next, err := nav.NextPubSibling(ctx, ch3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next != nil {
			t.Errorf("expected nil next sibling, got %+v", next)
		}
	})

	t.Run("results are memoized per instance", func(t *testing.T) {
		page := &data.Page{ID: 3, Title: "Two", Slug: "two", ParentID: int64Ptr(1), Template: data.TemplateChapter, Published: true, Sort: 2}
		store.pages[3] = page
		before := store.childrenCalls
		if _, err := nav.NextPubSibling(ctx, page); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := nav.NextPubSibling(ctx, page); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := store.childrenCalls - before; got != 1 {
			t.Errorf("expected 1 store lookup across repeated calls, got %d", got)
		}
	})
}

func TestDescendants(t *testing.T) {
	ctx := context.Background()

	book := &data.Page{ID: 1, Slug: "book"}
	ch1 := &data.Page{ID: 2, Slug: "ch1", ParentID: int64Ptr(1), Sort: 1}
	ch2 := &data.Page{ID: 3, Slug: "ch2", ParentID: int64Ptr(1), Sort: 2}
	scene := &data.Page{ID: 4, Slug: "scene", ParentID: int64Ptr(2)}
	store := newMockPageStore(book, ch1, ch2, scene)
	nav := NewNavigator(store)

	descendants, err := nav.Descendants(ctx, book)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{2, 4, 3}
	if len(descendants) != len(want) {
		t.Fatalf("expected %d descendants, got %d", len(want), len(descendants))
	}
	for i, id := range want {
		if descendants[i].ID != id {
			t.Errorf("position %d: expected page %d, got %d", i, id, descendants[i].ID)
		}
	}
}
