package service

import (
	"context"
	"strings"

	"go-writer-app/internal/data"
)

// TagService provides tag creation and listing with name uniqueness.
type TagService struct {
	tags *data.TagRepository
}

// NewTagService creates a TagService.
func NewTagService(tags *data.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// CreateTag creates a tag. Names are compared exactly and
// case-sensitively; a duplicate yields a UniquenessError with nothing
// written.
func (s *TagService) CreateTag(ctx context.Context, name string) (*data.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"Name": "failed 'required' validation"}}
	}
	existing, err := s.tags.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &UniquenessError{Entity: "tag", Field: "name", Value: name}
	}
	tag := &data.Tag{Name: name}
	if err := s.tags.CreateTag(ctx, tag); err != nil {
		return nil, &StorageError{Op: "create tag", Err: err}
	}
	return tag, nil
}

// ListTags returns all tags ordered by name.
func (s *TagService) ListTags(ctx context.Context) ([]*data.Tag, error) {
	return s.tags.GetAll(ctx)
}
