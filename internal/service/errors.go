package service

import (
	"fmt"

	"github.com/phrazzld/baike-api/internal/domain"
)

// EmptyStructureError is returned when a fetched document yields no content
// blocks. It wraps domain.ErrEmptyStructure.
type EmptyStructureError struct {
	URL   string
	Title string
}

// Error implements the error interface.
func (e *EmptyStructureError) Error() string {
	return fmt.Sprintf("%s: %s (title %q)", domain.ErrEmptyStructure, e.URL, e.Title)
}

// Unwrap returns domain.ErrEmptyStructure to support errors.Is.
func (e *EmptyStructureError) Unwrap() error {
	return domain.ErrEmptyStructure
}
