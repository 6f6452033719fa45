package service

import (
	"fmt"
	"strings"
)

// UniquenessError reports a duplicate value for a field that must be
// unique: tag names, subscriber emails, usernames. Nothing is written
// when it is returned.
type UniquenessError struct {
	Entity string
	Field  string
	Value  string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Entity, e.Field, e.Value)
}

// ValidationError reports invalid input, caught before any store
// interaction. Fields maps field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StorageError reports a transactional failure at commit time. The
// whole operation, including any snapshot written earlier in the same
// transaction, has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
