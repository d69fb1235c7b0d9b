package loader

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Entry is one bundled template.
type Entry struct {
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// Bundle reads every file below dir matching the glob pattern
// (which may use **) and returns them sorted by path, with
// paths relative to dir. The result is meant to be handed to
// a render as data, for example to emit client-side templates
// inside script tags.
func Bundle(dir string, pattern string) ([]Entry, error) {
	return BundleFS(os.DirFS(dir), pattern)
}

// BundleFS is Bundle over an arbitrary file system.
func BundleFS(fsys fs.FS, pattern string) ([]Entry, error) {
	const errCtx = "bundling templates"

	matches, err := doublestar.Glob(
		fsys, pattern, doublestar.WithFilesOnly(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	sort.Strings(matches)

	entries := make([]Entry, 0, len(matches))

	for _, ma := range matches {
		content, err := fs.ReadFile(fsys, ma)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", errCtx, ma, err)
		}

		entries = append(entries, Entry{Path: ma, Content: string(content)})
	}

	return entries, nil
}
