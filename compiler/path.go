package compiler

import (
	"path"
	"strings"

	"github.com/byte4ever/nanotemplates/loader"
)

// Resolve computes the local path of requested as referenced
// from baseFile. A leading slash makes requested root-relative;
// otherwise it is relative to the directory of baseFile. Results
// that climb above the root fail with loader.ErrOutsideRoot.
func Resolve(baseFile string, requested string) (string, error) {
	if requested == "" {
		return "", loader.ErrNotFound
	}

	if strings.HasPrefix(requested, "/") {
		return loader.Clean(requested)
	}

	return loader.Clean(path.Join(path.Dir(baseFile), requested))
}
