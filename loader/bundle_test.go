package loader_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/nanotemplates/loader"
)

func TestBundleFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"client/b.html":      {Data: []byte("B")},
		"client/deep/a.html": {Data: []byte("A")},
		"client/style.css":   {Data: []byte("css")},
		"server.html":        {Data: []byte("S")},
	}

	got, err := loader.BundleFS(fsys, "client/**/*.html")
	require.NoError(t, err)

	assert.Equal(t, []loader.Entry{
		{Path: "client/b.html", Content: "B"},
		{Path: "client/deep/a.html", Content: "A"},
	}, got)
}

func TestBundle_directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "x/one.tpl", "1")
	writeTemp(t, dir, "two.tpl", "2")

	got, err := loader.Bundle(dir, "**/*.tpl")
	require.NoError(t, err)

	assert.Equal(t, []loader.Entry{
		{Path: "two.tpl", Content: "2"},
		{Path: "x/one.tpl", Content: "1"},
	}, got)
}
