package service

import (
	"context"
	"strings"

	"go-writer-app/internal/data"
)

// DefinitionService manages glossary entries.
type DefinitionService struct {
	defs *data.DefinitionRepository
}

// NewDefinitionService creates a DefinitionService.
func NewDefinitionService(defs *data.DefinitionRepository) *DefinitionService {
	return &DefinitionService{defs: defs}
}

// CreateDefinition adds a glossary entry.
func (s *DefinitionService) CreateDefinition(ctx context.Context, def *data.Definition) (*data.Definition, error) {
	if strings.TrimSpace(def.Name) == "" {
		return nil, &ValidationError{Fields: map[string]string{"Name": "failed 'required' validation"}}
	}
	if err := s.defs.CreateDefinition(ctx, def); err != nil {
		return nil, &StorageError{Op: "create definition", Err: err}
	}
	return def, nil
}

// UpdateDefinition overwrites an existing glossary entry.
func (s *DefinitionService) UpdateDefinition(ctx context.Context, def *data.Definition) error {
	if strings.TrimSpace(def.Name) == "" {
		return &ValidationError{Fields: map[string]string{"Name": "failed 'required' validation"}}
	}
	return s.defs.UpdateDefinition(ctx, def)
}

// ListDefinitions returns all glossary entries ordered by name.
func (s *DefinitionService) ListDefinitions(ctx context.Context) ([]*data.Definition, error) {
	return s.defs.GetAll(ctx)
}
