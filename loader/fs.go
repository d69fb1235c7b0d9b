package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FS loads templates from a directory. Local paths are
// resolved against Basedir and may not leave it, neither
// lexically nor through symlinks.
type FS struct {
	Basedir string
}

// NewFS returns a loader rooted at basedir.
func NewFS(basedir string) *FS {
	return &FS{Basedir: basedir}
}

// Load reads the file at localPath below Basedir.
func (fl *FS) Load(
	ctx context.Context,
	localPath string,
) (result string, retErr error) {
	const errCtx = "loading from file system"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	local, err := Clean(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, localPath, err)
	}

	root, err := os.OpenRoot(fl.Basedir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		_ = root.Close() //nolint:errcheck // read-only handle
	}()

	fi, err := root.Open(filepath.FromSlash(local))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %s: %w", errCtx, local, ErrNotFound)
	}

	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, local, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	content, err := io.ReadAll(fi)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, local, err)
	}

	return string(content), nil
}
