package loader

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Pattern: Strategy -- swap template storage without changing
// compilation.

var (
	// ErrNotFound is returned when no template exists at a
	// local path.
	ErrNotFound = errors.New("template not found")

	// ErrOutsideRoot is returned for paths that normalize to a
	// location above the root.
	ErrOutsideRoot = errors.New("path is outside root")
)

// Loader reads the raw text of the template at a local path.
type Loader interface {
	Load(ctx context.Context, localPath string) (string, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(
	ctx context.Context,
	localPath string,
) (string, error)

// Load delegates to the wrapped function.
func (f LoaderFunc) Load(
	ctx context.Context,
	localPath string,
) (string, error) {
	return f(ctx, localPath)
}

// Clean normalizes a local path. Leading slashes are dropped,
// since local paths are always root-relative, and '.' and '..'
// elements are resolved. Relative paths that climb above the
// root are rejected with ErrOutsideRoot.
func Clean(localPath string) (string, error) {
	if strings.HasPrefix(localPath, "/") {
		cleaned := strings.TrimPrefix(path.Clean(localPath), "/")
		if cleaned == "" {
			return "", ErrNotFound
		}

		return cleaned, nil
	}

	cleaned := path.Clean(localPath)

	switch {
	case cleaned == ".":
		return "", ErrNotFound
	case cleaned == "..", strings.HasPrefix(cleaned, "../"):
		return "", ErrOutsideRoot
	}

	return cleaned, nil
}
