package tree

import (
	"context"
	"errors"

	"go-writer-app/internal/data"
)

// Navigator computes ordered sibling sets, prev/next navigation, and
// ancestor and descendant lists by repeated parent/child lookup.
type Navigator struct {
	pages PageFinder
}

// NewNavigator creates a Navigator reading from the given store.
func NewNavigator(pages PageFinder) *Navigator {
	return &Navigator{pages: pages}
}

// Ancestors returns the strict ancestors of page from nearest parent to
// root. A root page yields an empty slice. A dangling or cyclic parent
// chain yields a ReferenceError.
func (n *Navigator) Ancestors(ctx context.Context, page *data.Page) ([]*data.Page, error) {
	var ancestors []*data.Page
	seen := map[int64]bool{page.ID: true}
	cur := page.ParentID
	for cur != nil {
		id := *cur
		if seen[id] {
			return nil, &ReferenceError{PageID: page.ID, ParentID: id, Reason: "parent chain is cyclic"}
		}
		seen[id] = true
		parent, err := n.pages.GetPageByID(ctx, id)
		if err != nil {
			if errors.Is(err, data.ErrNotFound) {
				return nil, &ReferenceError{PageID: page.ID, ParentID: id, Reason: "parent does not exist"}
			}
			return nil, err
		}
		ancestors = append(ancestors, parent)
		cur = parent.ParentID
	}
	return ancestors, nil
}

// Descendants returns every page below page in the tree, depth first.
func (n *Navigator) Descendants(ctx context.Context, page *data.Page) ([]*data.Page, error) {
	var descendants []*data.Page
	children, err := n.pages.Children(ctx, &page.ID, false, false)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		descendants = append(descendants, child)
		below, err := n.Descendants(ctx, child)
		if err != nil {
			return nil, err
		}
		descendants = append(descendants, below...)
	}
	return descendants, nil
}

// PubChildren returns page's children ordered by (sort, pub_date,
// title), optionally restricted to published pages and to chapter/post
// templates.
func (n *Navigator) PubChildren(ctx context.Context, page *data.Page, publishedOnly, chapterPostOnly bool) ([]*data.Page, error) {
	return n.pages.Children(ctx, &page.ID, publishedOnly, chapterPostOnly)
}

// PubSiblings returns page's own generation with the same filters and
// order as PubChildren, keyed on the page's parent.
func (n *Navigator) PubSiblings(ctx context.Context, page *data.Page, publishedOnly, chapterPostOnly bool) ([]*data.Page, error) {
	return n.pages.Children(ctx, page.ParentID, publishedOnly, chapterPostOnly)
}

// NextPubSibling returns the published sibling immediately after page
// in sibling order, or nil if page is last or absent from the set. The
// result is memoized on the loaded page instance.
func (n *Navigator) NextPubSibling(ctx context.Context, page *data.Page) (*data.Page, error) {
	if page.Memo.NextKnown {
		return page.Memo.NextSibling, nil
	}
	siblings, err := n.PubSiblings(ctx, page, true, false)
	if err != nil {
		return nil, err
	}
	var next *data.Page
	for i, sibling := range siblings {
		if sibling.ID == page.ID && i+1 < len(siblings) {
			next = siblings[i+1]
			break
		}
	}
	page.Memo.NextSibling = next
	page.Memo.NextKnown = true
	return next, nil
}

// PrevPubSibling returns the published sibling immediately before page
// in sibling order, or nil if page is first or absent from the set. The
// result is memoized on the loaded page instance.
func (n *Navigator) PrevPubSibling(ctx context.Context, page *data.Page) (*data.Page, error) {
	if page.Memo.PrevKnown {
		return page.Memo.PrevSibling, nil
	}
	siblings, err := n.PubSiblings(ctx, page, true, false)
	if err != nil {
		return nil, err
	}
	var prev *data.Page
	for i, sibling := range siblings {
		if sibling.ID == page.ID && i > 0 {
			prev = siblings[i-1]
			break
		}
	}
	page.Memo.PrevSibling = prev
	page.Memo.PrevKnown = true
	return prev, nil
}
