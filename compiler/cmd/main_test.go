package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readFile(tb testing.TB, pa string) string {
	tb.Helper()

	content, err := os.ReadFile(pa) //nolint:gosec // test file
	require.NoError(tb, err)

	return string(content)
}

func TestRun_renders_to_output_file(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTemp(t, dir, "tpl/main.html",
		`<each:u in="users">#{u} </each:u>#{version}<!-- c -->`)

	opts := options{
		configFile: writeTemp(t, dir, "c.yaml",
			"basedir: tpl\nglobals:\n  version: \"{GIT_SHA}\"\n"),
		tpl:           "main.html",
		dataFile:      writeTemp(t, dir, "data.yaml", "users: [ann, bob]\n"),
		output:        filepath.Join(dir, "out.html"),
		stripComments: true,
		stampFiles: arrayFlags{
			writeTemp(t, dir, "status.txt", "GIT_SHA abc123\n"),
		},
	}

	require.NoError(t, run(context.Background(), opts, discard()))
	assert.Equal(t, "ann bob abc123", readFile(t, opts.output))
}

func TestRun_json_data(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTemp(t, dir, "main.html", `#{page.title}`)

	opts := options{
		basedir:  dir,
		tpl:      "main.html",
		dataFile: writeTemp(t, dir, "data.json", `{"page": {"title": "Home"}}`),
		output:   filepath.Join(dir, "out.html"),
	}

	require.NoError(t, run(context.Background(), opts, discard()))
	assert.Equal(t, "Home", readFile(t, opts.output))
}

func TestRun_database_falls_back_to_basedir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tpl.db")

	db, err := openDB(dbPath)
	require.NoError(t, err)

	_, err = db.Exec("CREATE TABLE pages (path TEXT, content TEXT)")
	require.NoError(t, err)

	_, err = db.Exec(
		"INSERT INTO pages VALUES (?, ?)",
		"main.html", `db:<include file="foot.html"/>`,
	)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	writeTemp(t, dir, "foot.html", "fs")

	opts := options{
		basedir: dir,
		tpl:     "main.html",
		dbPath:  dbPath,
		table:   "pages",
		output:  filepath.Join(dir, "out.html"),
	}

	require.NoError(t, run(context.Background(), opts, discard()))
	assert.Equal(t, "db:fs", readFile(t, opts.output))
}

func TestRun_bundle_injected_as_data(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTemp(t, dir, "main.html",
		`<each:e in="templates">[#{e.path}=#{e.content}]</each:e>`)
	writeTemp(t, dir, "client/a.html", "<b>")

	opts := options{
		basedir:       dir,
		tpl:           "main.html",
		bundleDir:     filepath.Join(dir, "client"),
		bundlePattern: "*.html",
		bundleKey:     "templates",
		output:        filepath.Join(dir, "out.html"),
	}

	require.NoError(t, run(context.Background(), opts, discard()))
	assert.Equal(t, "[a.html=&lt;b&gt;]", readFile(t, opts.output))
}

func TestRun_requires_template(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), options{}, discard())
	require.Error(t, err)
}

func TestRun_compile_error(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTemp(t, dir, "main.html", `<if>`)

	err := run(context.Background(), options{
		basedir: dir,
		tpl:     "main.html",
	}, discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed <if>")
}

func TestLoadData_empty_file(t *testing.T) {
	t.Parallel()

	got, err := loadData(writeTemp(t, t.TempDir(), "d.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = loadData("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewLogger_falls_back_to_info(t *testing.T) {
	t.Parallel()

	lg := newLogger("chatty")
	assert.True(t, lg.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, lg.Enabled(context.Background(), slog.LevelDebug))
}
