package parser

import (
	"errors"
	"fmt"
)

// Compile errors. A CompileError wraps exactly one of these.
var (
	// ErrNoSection indicates a parameter line before any section header.
	ErrNoSection = errors.New("parameter outside of a section")

	// ErrUnknownSection indicates an unrecognized `:section` name.
	ErrUnknownSection = errors.New("unknown section")

	// ErrTokenCount indicates too few or too many tokens on a line.
	ErrTokenCount = errors.New("wrong number of tokens")

	// ErrInvalidInteger indicates a column or range that is not a positive integer.
	ErrInvalidInteger = errors.New("invalid integer")

	// ErrDelimiterTooLong indicates a delimiter longer than MaxDelimiterLength.
	ErrDelimiterTooLong = errors.New("delimiter too long")

	// ErrUnknownOption indicates an unrecognized keyword alternative.
	ErrUnknownOption = errors.New("unrecognized option")

	// ErrBadPattern indicates a pattern that failed to compile.
	ErrBadPattern = errors.New("invalid pattern")
)

// CompileError reports the first problem found in a definition source.
type CompileError struct {
	// Name is the definition name.
	Name string
	// File is the originating filename.
	File string
	// Line is the 1-based source line number.
	Line int
	// Token is the offending token, if any.
	Token string
	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	where := e.Name
	if e.File != "" {
		where = fmt.Sprintf("%s (%s)", e.Name, e.File)
	}
	if e.Token != "" {
		return fmt.Sprintf("parser %s line %d: %v: %q", where, e.Line, e.Err, e.Token)
	}
	return fmt.Sprintf("parser %s line %d: %v", where, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// tokenError is raised by section handlers; the compiler adds the position.
type tokenError struct {
	token string
	err   error
}

func (e *tokenError) Error() string {
	return fmt.Sprintf("%v: %q", e.err, e.token)
}

func (e *tokenError) Unwrap() error {
	return e.err
}

func errToken(err error, token string) error {
	return &tokenError{token: token, err: err}
}
