package service

import (
	"context"
	"encoding/json"
	"time"

	"go-writer-app/internal/cache"
	"go-writer-app/internal/logger"
	"go-writer-app/internal/tree"
)

// navCacheKey is the cache key for the serialized navigation tree.
const navCacheKey = "nav"

// navDepth limits the navigation tree to three generations.
const navDepth = 3

// NavItem is one node of the published navigation tree.
type NavItem struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Path     string    `json:"path"`
	Children []NavItem `json:"children"`
}

// BuildNav builds the published navigation tree as a plain value:
// root pages and two generations below them, sibling-ordered. Callers
// decide how long to cache the result.
func BuildNav(ctx context.Context, pages tree.PageFinder) ([]NavItem, error) {
	return navLevel(ctx, pages, nil, navDepth)
}

func navLevel(ctx context.Context, pages tree.PageFinder, parentID *int64, depth int) ([]NavItem, error) {
	if depth == 0 {
		return []NavItem{}, nil
	}
	children, err := pages.Children(ctx, parentID, true, false)
	if err != nil {
		return nil, err
	}
	items := make([]NavItem, 0, len(children))
	for _, page := range children {
		below, err := navLevel(ctx, pages, &page.ID, depth-1)
		if err != nil {
			return nil, err
		}
		items = append(items, NavItem{
			ID:       page.ID,
			Title:    page.Title,
			Path:     page.Path,
			Children: below,
		})
	}
	return items, nil
}

// NavService serves the navigation tree through the TTL cache, so the
// tree is rebuilt at most once per TTL window rather than per request.
type NavService struct {
	pages tree.PageFinder
	cache *cache.Cache
	ttl   time.Duration
	log   logger.Logger
}

// NewNavService creates a NavService.
func NewNavService(pages tree.PageFinder, c *cache.Cache, ttl time.Duration, log logger.Logger) *NavService {
	return &NavService{pages: pages, cache: c, ttl: ttl, log: log}
}

// Nav returns the navigation tree, from cache when fresh.
func (s *NavService) Nav(ctx context.Context) ([]NavItem, error) {
	if cached, err := s.cache.Get(navCacheKey); err != nil {
		s.log.Error(err, "nav cache read failed")
	} else if cached != nil {
		var items []NavItem
		if err := json.Unmarshal(cached, &items); err == nil {
			return items, nil
		}
		// A corrupt entry falls through to a rebuild.
	}

	items, err := BuildNav(ctx, s.pages)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(navCacheKey, encoded, s.ttl); err != nil {
			s.log.Error(err, "nav cache write failed")
		}
	}
	return items, nil
}

// Invalidate drops the cached tree; called after any page mutation so
// navigation reflects the change on the next request.
func (s *NavService) Invalidate() {
	if err := s.cache.Delete(navCacheKey); err != nil {
		s.log.Error(err, "nav cache invalidation failed")
	}
}
