package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrIncludeCycle is returned when a template includes
	// itself, directly or through other includes.
	ErrIncludeCycle = errors.New("include cycle")

	// ErrJobReused is returned when Compile is called twice on
	// the same Job.
	ErrJobReused = errors.New("job already compiled")
)

// LoadError reports a template or inline file that could not
// be read: missing, outside the root, or failing I/O.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseError reports malformed markup.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExpressionError reports an expression that failed to
// compile or to evaluate.
type ExpressionError struct {
	Path   string
	Source string
	Err    error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf(
		"expression %q in %s: %v", e.Source, e.Path, e.Err,
	)
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}
