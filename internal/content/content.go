// Package content resolves display attributes for pages: inherited
// banner/sidebar/section values, plain-text descriptions, and preview
// codes for unpublished pages. Everything here is a pure read; pages
// are never mutated.
package content

import (
	"context"
	"errors"
	"strings"

	"go-writer-app/internal/data"
	"go-writer-app/internal/tree"
)

// Resolver resolves effective page attributes, substituting the
// parent's value one level up when a chapter or post leaves a field
// empty.
type Resolver struct {
	pages   tree.PageFinder
	baseURL string
}

// NewResolver creates a Resolver. baseURL qualifies relative banner
// paths, e.g. "https://example.com".
func NewResolver(pages tree.PageFinder, baseURL string) *Resolver {
	return &Resolver{pages: pages, baseURL: strings.TrimRight(baseURL, "/")}
}

// parentOf loads the page's parent for display resolution. A missing
// parent degrades to "no parent" here rather than failing; structural
// validation belongs to the write path.
func (r *Resolver) parentOf(ctx context.Context, page *data.Page) (*data.Page, error) {
	if page.ParentID == nil {
		return nil, nil
	}
	parent, err := r.pages.GetPageByID(ctx, *page.ParentID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parent, nil
}

// EffectiveBanner returns the banner URL to display for page, or ""
// when neither the page nor (for chapters and posts) its parent sets
// one. Absolute http(s) values pass through verbatim; relative values
// are qualified against the configured base URL.
func (r *Resolver) EffectiveBanner(ctx context.Context, page *data.Page) (string, error) {
	banner := ""
	if page.Banner != nil {
		banner = *page.Banner
	}
	if banner == "" && page.IsChapterOrPost() {
		parent, err := r.parentOf(ctx, page)
		if err != nil {
			return "", err
		}
		if parent != nil && parent.Banner != nil {
			banner = *parent.Banner
		}
	}
	if banner == "" {
		return "", nil
	}
	if strings.HasPrefix(banner, "http") {
		return banner, nil
	}
	return r.baseURL + "/" + strings.TrimLeft(banner, "/"), nil
}

// EffectiveSidebar returns the sidebar markdown to display: the page's
// own value, or the parent's when a chapter or post leaves it empty.
func (r *Resolver) EffectiveSidebar(ctx context.Context, page *data.Page) (string, error) {
	if page.Sidebar != "" || !page.IsChapterOrPost() {
		return page.Sidebar, nil
	}
	parent, err := r.parentOf(ctx, page)
	if err != nil {
		return "", err
	}
	if parent == nil {
		return page.Sidebar, nil
	}
	return parent.Sidebar, nil
}

// SectionName returns the display grouping for page: the parent's
// title for chapters and posts with a parent, else the page's own.
func (r *Resolver) SectionName(ctx context.Context, page *data.Page) (string, error) {
	if !page.IsChapterOrPost() {
		return page.Title, nil
	}
	parent, err := r.parentOf(ctx, page)
	if err != nil {
		return "", err
	}
	if parent == nil {
		return page.Title, nil
	}
	return parent.Title, nil
}

// descriptionLength is how much of the body a generated description
// keeps before the ellipsis.
const descriptionLength = 247

// Description returns the page summary, or a truncated plain-text
// rendering of the body when no summary is set.
func Description(page *data.Page) string {
	if page.Summary != "" {
		return page.Summary
	}
	body := []rune(page.Body)
	if len(body) > descriptionLength {
		body = body[:descriptionLength]
	}
	text := string(body)
	text = strings.ReplaceAll(text, "#", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "--", "&#8212;")
	text = strings.ReplaceAll(text, "_", "")
	return text + "..."
}
