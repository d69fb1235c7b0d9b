// Binary nanotpl renders a template with data read from a
// YAML or JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/byte4ever/nanotemplates/compiler"
	"github.com/byte4ever/nanotemplates/loader"
	"github.com/byte4ever/nanotemplates/stamper"
)

type arrayFlags []string

func (af *arrayFlags) String() string {
	return ""
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

type options struct {
	configFile    string
	basedir       string
	tpl           string
	dataFile      string
	output        string
	stripComments bool
	dbPath        string
	table         string
	bundleDir     string
	bundlePattern string
	bundleKey     string
	logLevel      string
	stampFiles    arrayFlags
}

func parseFlags() options {
	var opts options

	flag.StringVar(
		&opts.configFile, "config", "",
		"YAML compiler configuration file",
	)

	flag.StringVar(
		&opts.basedir, "basedir", "",
		"template root directory (overrides config)",
	)

	flag.StringVar(
		&opts.tpl, "template", "",
		"local path of the template to render",
	)

	flag.StringVar(
		&opts.dataFile, "data", "",
		"YAML or JSON file holding render data",
	)

	flag.StringVar(
		&opts.output, "output", "",
		"output file path (stdout if empty)",
	)

	flag.BoolVar(
		&opts.stripComments, "strip-comments", false,
		"drop HTML comments from the output",
	)

	flag.StringVar(
		&opts.dbPath, "db", "",
		"sqlite database to load templates from before basedir",
	)

	flag.StringVar(
		&opts.table, "table", loader.DefaultTable,
		"table holding path and content columns",
	)

	flag.StringVar(
		&opts.bundleDir, "bundle-dir", "",
		"directory whose templates are exposed as data",
	)

	flag.StringVar(
		&opts.bundlePattern, "bundle-pattern", "**/*.html",
		"glob selecting bundled templates",
	)

	flag.StringVar(
		&opts.bundleKey, "bundle-key", "templates",
		"data key receiving the bundle",
	)

	flag.Var(
		&opts.stampFiles, "stamp-info-file",
		"build info file stamped into globals (repeatable)",
	)

	flag.StringVar(
		&opts.logLevel, "log-level", "info",
		"log level: debug, info, warn or error",
	)

	flag.Parse()

	return opts
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level

	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: lv},
	))
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	const errCtx = "nanotpl"

	if opts.tpl == "" {
		return fmt.Errorf("%s: --template is required", errCtx)
	}

	var cfg compiler.Config

	if opts.configFile != "" {
		loaded, err := compiler.LoadConfig(opts.configFile)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		cfg = loaded
	}

	if opts.basedir != "" {
		cfg.Basedir = opts.basedir
	}

	if opts.stripComments {
		cfg.StripComments = true
	}

	cfg.Logger = logger

	if len(opts.stampFiles) > 0 {
		stamps, err := stamper.Load(opts.stampFiles)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		cfg.Globals = stamper.Apply(cfg.Globals, stamps)
	}

	if opts.dbPath != "" {
		db, err := openDB(opts.dbPath)
		if err != nil {
			return fmt.Errorf("%s: opening database: %w", errCtx, err)
		}

		defer func() {
			_ = db.Close() //nolint:errcheck // read-only use
		}()

		basedir := cfg.Basedir
		if basedir == "" {
			basedir = "."
		}

		cfg.Loader = loader.Fallback{
			loader.NewSQL(db, opts.table),
			loader.NewFS(basedir),
		}
	}

	data, err := loadData(opts.dataFile)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if opts.bundleDir != "" {
		entries, err := loader.Bundle(opts.bundleDir, opts.bundlePattern)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		data[opts.bundleKey] = entries
	}

	co, err := compiler.New(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	out, err := co.Render(ctx, opts.tpl, data)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if opts.output != "" {
		if err := atomic.WriteFile(
			opts.output, strings.NewReader(out),
		); err != nil {
			return fmt.Errorf("%s: writing output: %w", errCtx, err)
		}

		logger.Info("rendered", "template", opts.tpl, "output", opts.output)

		return nil
	}

	if _, err := os.Stdout.WriteString(out); err != nil {
		return fmt.Errorf("%s: writing to stdout: %w", errCtx, err)
	}

	return nil
}

// loadData reads render data. YAML is a superset of JSON, so
// one decoder serves both.
func loadData(path string) (map[string]any, error) {
	const errCtx = "loading data"

	data := map[string]any{}

	if path == "" {
		return data, nil
	}

	content, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	if data == nil {
		data = map[string]any{}
	}

	return data, nil
}

func main() {
	opts := parseFlags()
	logger := newLogger(opts.logLevel)

	if err := run(context.Background(), opts, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
