package loader

import (
	"context"
	"errors"
	"fmt"
)

// Fallback tries each loader in order and returns the first
// successful result. It fails only when every loader fails;
// the error then wraps all of their errors.
type Fallback []Loader

// Load asks each loader in turn for localPath.
func (fb Fallback) Load(
	ctx context.Context,
	localPath string,
) (string, error) {
	const errCtx = "loading with fallback"

	errs := make([]error, 0, len(fb))

	for _, ld := range fb {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%s: %w", errCtx, err)
		}

		content, err := ld.Load(ctx, localPath)
		if err == nil {
			return content, nil
		}

		errs = append(errs, err)
	}

	if len(errs) == 0 {
		errs = append(errs, ErrNotFound)
	}

	return "", fmt.Errorf(
		"%s: %s: %w", errCtx, localPath, errors.Join(errs...),
	)
}
