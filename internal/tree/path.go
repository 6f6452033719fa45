// Package tree implements the page hierarchy engine: canonical path
// derivation, ancestor and sibling navigation, and the subtree path
// cascade that keeps stored paths consistent after a rename or
// re-parent. All lookups go through the PageFinder interface so the
// engine never holds a live object graph.
package tree

import (
	"context"
	"errors"
	"fmt"

	"go-writer-app/internal/data"
)

// PageFinder is the subset of the page store the tree engine reads from.
type PageFinder interface {
	GetPageByID(ctx context.Context, id int64) (*data.Page, error)
	Children(ctx context.Context, parentID *int64, publishedOnly, chapterPostOnly bool) ([]*data.Page, error)
}

// PathWriter persists recomputed path columns during a subtree cascade.
type PathWriter interface {
	UpdatePagePath(ctx context.Context, id int64, path, dirPath string) error
}

// ReferenceError reports a structurally invalid parent reference: the
// referenced page does not exist, or the assignment would make the
// parent chain cyclic. Mutations that trigger it must be rejected
// before commit.
type ReferenceError struct {
	PageID   int64
	ParentID int64
	Reason   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid parent reference %d for page %d: %s", e.ParentID, e.PageID, e.Reason)
}

// Resolver computes canonical hierarchical paths from parent chains.
type Resolver struct {
	pages PageFinder
}

// NewResolver creates a Resolver reading from the given store.
func NewResolver(pages PageFinder) *Resolver {
	return &Resolver{pages: pages}
}

// Resolve computes and sets page.Path and page.DirPath. Root pages get
// "/" + slug with DirPath "/"; other pages extend their parent's path.
// It must be called after every change to Slug or ParentID and before
// commit. A dangling or cyclic parent chain yields a ReferenceError.
func (r *Resolver) Resolve(ctx context.Context, page *data.Page) error {
	if page.ParentID == nil {
		page.Path = "/" + page.Slug
		page.DirPath = "/"
		return nil
	}

	if err := r.checkAncestry(ctx, page); err != nil {
		return err
	}

	parent, err := r.pages.GetPageByID(ctx, *page.ParentID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return &ReferenceError{PageID: page.ID, ParentID: *page.ParentID, Reason: "parent does not exist"}
		}
		return err
	}

	// A freshly created parent may not have a computed path yet; resolve
	// it first. The ancestry check above bounds this recursion.
	if parent.Path == "" {
		if err := r.Resolve(ctx, parent); err != nil {
			return err
		}
	}

	page.Path = parent.Path + "/" + page.Slug
	page.DirPath = parent.Path
	return nil
}

// checkAncestry walks the proposed parent chain up to the root and
// rejects dangling references and cycles. A page re-parented onto one
// of its own descendants would otherwise loop forever.
func (r *Resolver) checkAncestry(ctx context.Context, page *data.Page) error {
	seen := make(map[int64]bool)
	cur := page.ParentID
	for cur != nil {
		id := *cur
		if (page.ID != 0 && id == page.ID) || seen[id] {
			return &ReferenceError{PageID: page.ID, ParentID: *page.ParentID, Reason: "parent chain is cyclic"}
		}
		seen[id] = true
		ancestor, err := r.pages.GetPageByID(ctx, id)
		if err != nil {
			if errors.Is(err, data.ErrNotFound) {
				return &ReferenceError{PageID: page.ID, ParentID: id, Reason: "parent does not exist"}
			}
			return err
		}
		cur = ancestor.ParentID
	}
	return nil
}

// Cascade recomputes and persists the paths of every descendant of
// page, depth first, using page's already-resolved path as the new
// prefix. Callers run it inside the same transaction as the rename or
// re-parent that made the descendants stale.
func (r *Resolver) Cascade(ctx context.Context, w PathWriter, page *data.Page) error {
	children, err := r.pages.Children(ctx, &page.ID, false, false)
	if err != nil {
		return err
	}
	for _, child := range children {
		child.DirPath = page.Path
		child.Path = page.Path + "/" + child.Slug
		if err := w.UpdatePagePath(ctx, child.ID, child.Path, child.DirPath); err != nil {
			return err
		}
		if err := r.Cascade(ctx, w, child); err != nil {
			return err
		}
	}
	return nil
}
