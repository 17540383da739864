package domain

import "errors"

// Sentinel errors surfaced by the catalog service. The HTTP layer maps
// these to status codes; everything else is treated as internal.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
	ErrBookNotFound     = errors.New("book not found")
	ErrBookFileNotFound = errors.New("book file not found")
	ErrCoverNotFound    = errors.New("cover not found")

	// ErrUnsupportedFileType rejects uploads whose filename extension does
	// not map to application/pdf.
	ErrUnsupportedFileType = errors.New("unsupported file type: only PDFs are accepted")

	// ErrInvalidInput covers missing required fields and malformed values.
	// Wrap it with the field detail: fmt.Errorf("title is required: %w", ErrInvalidInput).
	ErrInvalidInput = errors.New("invalid input")
)
