package loader

import (
	"context"
	"fmt"
)

// Memory serves templates from a map keyed by local path. It
// suits tests and environments without a file system.
type Memory map[string]string

// Load returns the entry stored under the cleaned localPath.
func (mem Memory) Load(
	_ context.Context,
	localPath string,
) (string, error) {
	const errCtx = "loading from memory"

	local, err := Clean(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, localPath, err)
	}

	content, ok := mem[local]
	if !ok {
		return "", fmt.Errorf("%s: %s: %w", errCtx, local, ErrNotFound)
	}

	return content, nil
}
