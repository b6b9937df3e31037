package types

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than pdf, docx and txt
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction wraps failures of the underlying file parsers
	ErrExtraction = errors.New("text extraction failed")

	// ErrLengthMismatch is returned when ids and texts differ in length
	ErrLengthMismatch = errors.New("ids and texts length mismatch")

	// ErrEmptyCollection is returned when querying before anything was ingested
	ErrEmptyCollection = errors.New("collection is empty")

	// ErrGeneration wraps LLM provider failures
	ErrGeneration = errors.New("generation failed")

	// ErrInvalidConfig indicates bad chunking or service parameters
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidInput indicates a malformed request
	ErrInvalidInput = errors.New("invalid input")
)

// UnsupportedFormatError carries the rejected extension.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q, only pdf, docx and txt files are accepted", e.Ext)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
