package api

import (
	"errors"
	"fmt"
)

// Placeholders substituted for missing optional data. A missing field never fails a parse.
const (
	MissingTestName = "⚠️ missing test name"
)

// ErrUnrecognizedFormat is matched by UnrecognizedFormatError through errors.Is.
var ErrUnrecognizedFormat = errors.New("unrecognized test report format")

// ParseError is a structural error on a whole document. It is fatal for that document only.
type ParseError struct {
	Parser string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed document: %v", e.Parser, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnrecognizedFormatError is returned when no registered parser accepts a document.
type UnrecognizedFormatError struct {
	// Hint is the root element or the top-level keys seen while sniffing, when available.
	Hint string
}

func (e *UnrecognizedFormatError) Error() string {
	if e.Hint == "" {
		return ErrUnrecognizedFormat.Error()
	}
	return fmt.Sprintf("%s (found %s)", ErrUnrecognizedFormat, e.Hint)
}

func (e *UnrecognizedFormatError) Is(target error) bool {
	return target == ErrUnrecognizedFormat
}
