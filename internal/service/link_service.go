package service

import (
	"context"
	"strings"

	"go-writer-app/internal/data"
)

// LinkService manages the external link cards shown on the links page.
type LinkService struct {
	links *data.LinkRepository
}

// NewLinkService creates a LinkService.
func NewLinkService(links *data.LinkRepository) *LinkService {
	return &LinkService{links: links}
}

// CreateLink adds a link card.
func (s *LinkService) CreateLink(ctx context.Context, link *data.Link) (*data.Link, error) {
	fields := map[string]string{}
	if strings.TrimSpace(link.Title) == "" {
		fields["Title"] = "failed 'required' validation"
	}
	u := strings.TrimSpace(link.URL)
	if u == "" {
		fields["URL"] = "failed 'required' validation"
	} else if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		fields["URL"] = "failed 'url' validation"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if err := s.links.CreateLink(ctx, link); err != nil {
		return nil, &StorageError{Op: "create link", Err: err}
	}
	return link, nil
}

// ListLinks returns all link cards in display order.
func (s *LinkService) ListLinks(ctx context.Context) ([]*data.Link, error) {
	return s.links.GetAll(ctx)
}

// DeleteLink removes a link card.
func (s *LinkService) DeleteLink(ctx context.Context, id int64) error {
	return s.links.DeleteLink(ctx, id)
}
