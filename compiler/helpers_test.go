package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/byte4ever/nanotemplates/compiler"
	"github.com/byte4ever/nanotemplates/loader"
)

// countingLoader serves files from memory and counts every
// load per local path.
type countingLoader struct {
	files loader.Memory
	total atomic.Int64
}

func (cl *countingLoader) Load(
	ctx context.Context,
	localPath string,
) (string, error) {
	cl.total.Add(1)
	return cl.files.Load(ctx, localPath)
}

// newCompiler builds a compiler over files. Options tweak the
// config before creation.
func newCompiler(
	tb testing.TB,
	files map[string]string,
	opts ...func(*compiler.Config),
) *compiler.Compiler {
	tb.Helper()

	cfg := compiler.Config{Loader: loader.Memory(files)}

	for _, opt := range opts {
		opt(&cfg)
	}

	co, err := compiler.New(cfg)
	require.NoError(tb, err)

	return co
}

// render compiles main.html from files and renders it with
// data.
func render(
	tb testing.TB,
	files map[string]string,
	data any,
	opts ...func(*compiler.Config),
) string {
	tb.Helper()

	co := newCompiler(tb, files, opts...)

	out, err := co.Render(context.Background(), "main.html", data)
	require.NoError(tb, err)

	return out
}

func withCache(cfg *compiler.Config) {
	cfg.Cache = &compiler.CacheConfig{}
}

func withStripComments(cfg *compiler.Config) {
	cfg.StripComments = true
}

// writeTemp creates a file with content below dir and returns
// its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.MkdirAll(filepath.Dir(pa), 0o750))
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}
