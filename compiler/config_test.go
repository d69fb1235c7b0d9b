package compiler_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/nanotemplates/compiler"
)

func TestLoadConfig_full(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	pa := writeTemp(t, dir, "nanotpl.yaml", `basedir: templates
strip_comments: true
globals:
  site: Acme
  nav:
    - home
    - about
cache:
  size: 10
  max_age: 2m
`)

	cfg, err := compiler.LoadConfig(pa)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "templates"), cfg.Basedir)
	assert.True(t, cfg.StripComments)
	assert.Equal(t, "Acme", cfg.Globals["site"])
	require.NotNil(t, cfg.Cache)
	assert.Equal(t, 10, cfg.Cache.Size)
	assert.Equal(t, 2*time.Minute, cfg.Cache.MaxAge)
}

func TestLoadConfig_cache_flag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		enabled bool
	}{
		{name: "enabled", content: "cache: true\n", enabled: true},
		{name: "disabled", content: "cache: false\n", enabled: false},
		{name: "absent", content: "strip_comments: false\n", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pa := writeTemp(t, t.TempDir(), "c.yaml", tt.content)

			cfg, err := compiler.LoadConfig(pa)
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, cfg.Cache != nil)
		})
	}
}

func TestLoadConfig_absolute_basedir_kept(t *testing.T) {
	t.Parallel()

	abs := t.TempDir()
	pa := writeTemp(t, t.TempDir(), "c.yaml", "basedir: "+abs+"\n")

	cfg, err := compiler.LoadConfig(pa)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Basedir)
}

func TestLoadConfig_bad_max_age(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, t.TempDir(), "c.yaml", "cache:\n  max_age: soon\n")

	_, err := compiler.LoadConfig(pa)
	require.Error(t, err)
}

func TestLoadConfig_missing_file(t *testing.T) {
	t.Parallel()

	_, err := compiler.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_drives_compiler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeTemp(t, dir, "tpl/main.html", `#{site}<!-- x -->`)
	pa := writeTemp(t, dir, "c.yaml", `basedir: tpl
strip_comments: true
globals:
  site: Acme
cache: true
`)

	cfg, err := compiler.LoadConfig(pa)
	require.NoError(t, err)

	co, err := compiler.New(cfg)
	require.NoError(t, err)

	out, err := co.Render(t.Context(), "main.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", out)
}
