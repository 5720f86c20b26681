package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harborstreet/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validatePatterns checks a pattern list before a full-list replace.
// An empty slice is legal (deleting the last pattern); nil is not.
func validatePatterns(patterns []model.CustomPattern) error {
	if patterns == nil {
		return fmt.Errorf("%w: patterns", ErrNilParameter)
	}
	for i, p := range patterns {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("pattern at index %d has no id", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("pattern at index %d has no name", i)
		}
		if strings.TrimSpace(p.Category) == "" {
			return fmt.Errorf("pattern at index %d has no category", i)
		}
	}
	return nil
}
