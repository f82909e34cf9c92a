package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrAccess matches every *AccessError.
	ErrAccess = errors.New("file access failed")
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("invalid YAML")
)

// AccessError reports that a document could not be opened or read.
type AccessError struct {
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func (e *AccessError) Is(target error) bool {
	return target == ErrAccess
}

// ParseError reports a document that is not valid YAML or does not have the
// expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid YAML in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
