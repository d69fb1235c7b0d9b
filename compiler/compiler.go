package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/singleflight"

	"github.com/byte4ever/nanotemplates/ast"
	"github.com/byte4ever/nanotemplates/expr"
	"github.com/byte4ever/nanotemplates/loader"
	"github.com/byte4ever/nanotemplates/runtime"
)

// Compiler compiles templates by local path. When caching is
// enabled, compiled templates are kept in a bounded cache with
// time-based eviction; caching only saves work and never
// changes output. A Compiler is safe for concurrent use.
type Compiler struct {
	loader        loader.Loader
	engine        expr.Engine
	lib           *runtime.Library
	globals       map[string]cty.Value
	stripComments bool
	cache         *expirable.LRU[string, *Template]
	group         singleflight.Group
	logger        *slog.Logger
}

// New creates a compiler from cfg. Without an explicit Loader
// templates are read from Basedir, or from the working
// directory when Basedir is empty.
func New(cfg Config) (*Compiler, error) {
	const errCtx = "creating compiler"

	co := &Compiler{
		loader:        cfg.Loader,
		engine:        cfg.Engine,
		lib:           cfg.Library,
		stripComments: cfg.StripComments,
		logger:        cfg.Logger,
	}

	if co.loader == nil {
		basedir := cfg.Basedir
		if basedir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", errCtx, err)
			}

			basedir = wd
		}

		co.loader = loader.NewFS(basedir)
	}

	if co.engine == nil {
		co.engine = expr.HCL{}
	}

	if co.lib == nil {
		co.lib = runtime.Stdlib()
	}

	if co.logger == nil {
		co.logger = slog.Default()
	}

	globals, err := runtime.Bindings(cfg.Globals)
	if err != nil {
		return nil, fmt.Errorf("%s: globals: %w", errCtx, err)
	}

	co.globals = globals

	if cfg.Cache != nil {
		size, maxAge := cfg.Cache.withDefaults()
		co.cache = expirable.NewLRU[string, *Template](size, nil, maxAge)
	}

	return co, nil
}

// NewJob returns a job compiling the template at path,
// bypassing the cache.
func (co *Compiler) NewJob(path string) (*Job, error) {
	file, err := loader.Clean(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return &Job{
		compiler: co,
		file:     file,
		nodes:    make(map[string][]ast.Node),
	}, nil
}

// Compile returns the template at path, from the cache when
// possible. Concurrent misses on the same path share one
// compile.
func (co *Compiler) Compile(
	ctx context.Context,
	path string,
) (*Template, error) {
	const errCtx = "compiling template"

	jb, err := co.NewJob(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if co.cache == nil {
		return co.run(ctx, jb)
	}

	if tp, ok := co.cache.Get(jb.file); ok {
		co.logger.Debug("template cache hit", "path", jb.file)
		return tp, nil
	}

	// The shared compile outlives any one caller, so it runs
	// without the caller's cancellation.
	shared := context.WithoutCancel(ctx)

	ch := co.group.DoChan(jb.file, func() (any, error) {
		if tp, ok := co.cache.Get(jb.file); ok {
			return tp, nil
		}

		co.logger.Debug("template cache miss", "path", jb.file)

		tp, err := co.run(shared, jb)
		if err != nil {
			return nil, err
		}

		co.cache.Add(jb.file, tp)

		return tp, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", errCtx, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(*Template), nil
	}
}

func (co *Compiler) run(ctx context.Context, jb *Job) (*Template, error) {
	const errCtx = "compiling template"

	start := time.Now()

	tp, err := jb.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", errCtx, jb.file, err)
	}

	co.logger.Debug(
		"compiled template",
		"path", jb.file,
		"expressions", len(tp.slots),
		"files", len(jb.nodes),
		"elapsed", time.Since(start),
	)

	return tp, nil
}

// Render compiles the template at path and renders it with
// data. Nil data renders with empty bindings.
func (co *Compiler) Render(
	ctx context.Context,
	path string,
	data any,
) (string, error) {
	tp, err := co.Compile(ctx, path)
	if err != nil {
		return "", err
	}

	return tp.Render(data)
}

// Purge drops every cached template.
func (co *Compiler) Purge() {
	if co.cache != nil {
		co.cache.Purge()
	}
}
