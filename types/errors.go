package types

import "errors"

// Request-level failures surfaced to callers. Page-level extraction failures
// are recovered inside the extraction engine and never reach this taxonomy.
var (
	// ErrMalformedDocument means the upload could not be parsed as any
	// supported document format.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmptyDocument means extraction produced no text at all.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrEmptyQuery means the query was empty or whitespace-only after
	// sanitization.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrEmptyIndex means the knowledge index holds no entries. This is a
	// configuration error and fatal at startup.
	ErrEmptyIndex = errors.New("knowledge index is empty")

	// ErrGenerationTimeout means a model call exceeded the per-request
	// deadline. Callers may retry.
	ErrGenerationTimeout = errors.New("generation timed out")
)
