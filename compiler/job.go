package compiler

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/byte4ever/nanotemplates/ast"
	"github.com/byte4ever/nanotemplates/parser"
	"github.com/byte4ever/nanotemplates/runtime"
)

// Job compiles one entry template and everything it includes
// or inlines. It holds the expression slots and the parsed
// trees of every file seen so far. A Job serves exactly one
// compile.
type Job struct {
	compiler *Compiler
	file     string
	slots    []slot
	nodes    map[string][]ast.Node
	done     bool
}

// compileCtx is one nesting level: the entry file or one
// include target. Definitions are looked up nearest first;
// a child never writes to its parent.
type compileCtx struct {
	file   string
	defs   map[string]*definition
	parent *compileCtx
}

type definition struct {
	mode ast.Mode
	body instr
}

func newCompileCtx(file string, parent *compileCtx) *compileCtx {
	return &compileCtx{
		file:   file,
		defs:   make(map[string]*definition),
		parent: parent,
	}
}

func (cc *compileCtx) lookup(name string) *definition {
	for cu := cc; cu != nil; cu = cu.parent {
		if def, ok := cu.defs[name]; ok {
			return def
		}
	}

	return nil
}

// includes reports whether file is being compiled by cc or
// one of its ancestors.
func (cc *compileCtx) includes(file string) bool {
	for cu := cc; cu != nil; cu = cu.parent {
		if cu.file == file {
			return true
		}
	}

	return false
}

// Compile runs the job. The first error aborts the whole
// compile.
func (jb *Job) Compile(ctx context.Context) (*Template, error) {
	if jb.done {
		return nil, ErrJobReused
	}

	jb.done = true

	body, err := jb.processFile(ctx, jb.file, newCompileCtx(jb.file, nil))
	if err != nil {
		return nil, err
	}

	return &Template{
		path:    jb.file,
		body:    body,
		slots:   jb.slots,
		lib:     jb.compiler.lib,
		globals: jb.compiler.globals,
	}, nil
}

// processFile compiles the already resolved file under cc,
// parsing it at most once per job.
func (jb *Job) processFile(
	ctx context.Context,
	file string,
	cc *compileCtx,
) (instr, error) {
	nodes, ok := jb.nodes[file]
	if !ok {
		content, err := jb.load(ctx, file)
		if err != nil {
			return nil, err
		}

		nodes, err = parser.Parse(content)
		if err != nil {
			return nil, &ParseError{Path: file, Err: err}
		}

		jb.nodes[file] = nodes
	}

	return jb.processNodes(ctx, nodes, cc)
}

func (jb *Job) load(ctx context.Context, file string) (string, error) {
	content, err := jb.compiler.loader.Load(ctx, file)
	if err != nil {
		return "", &LoadError{Path: file, Err: err}
	}

	return content, nil
}

// processNodes compiles nodes in order; later siblings see the
// definitions registered by earlier ones.
func (jb *Job) processNodes(
	ctx context.Context,
	nodes []ast.Node,
	cc *compileCtx,
) (instr, error) {
	seq := make([]instr, 0, len(nodes))

	for _, nd := range nodes {
		in, err := jb.processNode(ctx, nd, cc)
		if err != nil {
			return nil, err
		}

		if in != nil {
			seq = append(seq, in)
		}
	}

	return sequence(seq...), nil
}

func (jb *Job) processNode(
	ctx context.Context,
	nd ast.Node,
	cc *compileCtx,
) (instr, error) {
	switch nd := nd.(type) {
	case *ast.Text:
		return literal(nd.Text), nil
	case *ast.Comment:
		if jb.compiler.stripComments {
			return nil, nil
		}

		return literal("<!--" + nd.Content + "-->"), nil
	case *ast.Def:
		return nil, jb.processDef(ctx, nd, cc)
	case *ast.Block:
		return jb.processBlock(ctx, nd, cc)
	case *ast.Include:
		return jb.processInclude(ctx, nd, cc)
	case *ast.Inline:
		return jb.processInline(ctx, nd, cc)
	case *ast.Expr:
		return jb.processExpr(nd, cc)
	case *ast.Var:
		return jb.processVar(nd, cc)
	case *ast.If:
		return jb.processIf(ctx, nd, cc)
	case *ast.Case:
		return jb.processCase(ctx, nd, cc)
	case *ast.Each:
		return jb.processEach(ctx, nd, cc)
	default:
		return nil, fmt.Errorf("unsupported node %T in %s", nd, cc.file)
	}
}

// processDef registers a definition in cc, merging it with an
// earlier one of the same name according to the new mode.
func (jb *Job) processDef(
	ctx context.Context,
	nd *ast.Def,
	cc *compileCtx,
) error {
	body, err := jb.processNodes(ctx, nd.Nodes, cc)
	if err != nil {
		return err
	}

	// A repeated def merges its body into the earlier one by its
	// own mode, and the merged definition keeps that later mode.
	if prior, ok := cc.defs[nd.Name]; ok {
		switch nd.Mode {
		case ast.ModeAppend:
			body = sequence(prior.body, body)
		case ast.ModePrepend:
			body = sequence(body, prior.body)
		}
	}

	cc.defs[nd.Name] = &definition{mode: nd.Mode, body: body}

	return nil
}

func (jb *Job) processBlock(
	ctx context.Context,
	nd *ast.Block,
	cc *compileCtx,
) (instr, error) {
	dflt, err := jb.processNodes(ctx, nd.Nodes, cc)
	if err != nil {
		return nil, err
	}

	def := cc.lookup(nd.Name)
	if def == nil {
		return dflt, nil
	}

	switch def.mode {
	case ast.ModeAppend:
		return sequence(dflt, def.body), nil
	case ast.ModePrepend:
		return sequence(def.body, dflt), nil
	default:
		return def.body, nil
	}
}

// processInclude compiles the target under a child context.
// The include's own defs are compiled first, relative to the
// including file, and are visible to the target and its
// descendants only.
func (jb *Job) processInclude(
	ctx context.Context,
	nd *ast.Include,
	cc *compileCtx,
) (instr, error) {
	target, err := Resolve(cc.file, nd.File)
	if err != nil {
		return nil, &LoadError{Path: nd.File, Err: err}
	}

	if cc.includes(target) {
		return nil, &LoadError{Path: target, Err: ErrIncludeCycle}
	}

	child := newCompileCtx(cc.file, cc)

	for _, def := range nd.Defs {
		if err := jb.processDef(ctx, def, child); err != nil {
			return nil, err
		}
	}

	child.file = target

	body, err := jb.processFile(ctx, target, child)
	if err != nil {
		return nil, err
	}

	return scoped(body), nil
}

func (jb *Job) processInline(
	ctx context.Context,
	nd *ast.Inline,
	cc *compileCtx,
) (instr, error) {
	target, err := Resolve(cc.file, nd.File)
	if err != nil {
		return nil, &LoadError{Path: nd.File, Err: err}
	}

	content, err := jb.load(ctx, target)
	if err != nil {
		return nil, err
	}

	if nd.Escape {
		content = runtime.Escape(content)
	}

	return literal(content), nil
}

// compileExpr appends source to the slot list and returns its
// index.
func (jb *Job) compileExpr(source string, cc *compileCtx) (int, error) {
	ev, err := jb.compiler.engine.Compile(source)
	if err != nil {
		return 0, &ExpressionError{Path: cc.file, Source: source, Err: err}
	}

	jb.slots = append(jb.slots, slot{ev: ev, file: cc.file})

	return len(jb.slots) - 1, nil
}

func (jb *Job) processExpr(nd *ast.Expr, cc *compileCtx) (instr, error) {
	idx, err := jb.compileExpr(nd.Source, cc)
	if err != nil {
		return nil, err
	}

	if !nd.Buffer {
		return func(rc *renderCtx, sc *runtime.Scope) error {
			_, err := rc.eval(idx, sc)
			return err
		}, nil
	}

	escape := nd.Escape

	return func(rc *renderCtx, sc *runtime.Scope) error {
		val, err := rc.eval(idx, sc)
		if err != nil {
			return err
		}

		return rc.write(idx, val, escape)
	}, nil
}

func (jb *Job) processVar(nd *ast.Var, cc *compileCtx) (instr, error) {
	idx, err := jb.compileExpr(nd.Source, cc)
	if err != nil {
		return nil, err
	}

	name := nd.Name

	return func(rc *renderCtx, sc *runtime.Scope) error {
		val, err := rc.eval(idx, sc)
		if err != nil {
			return err
		}

		sc.Set(name, val)

		return nil
	}, nil
}

// branch is a compiled when clause. For case clauses, match
// marks a constant condition compared by equality with the
// subject instead of being tested for truth.
type branch struct {
	cond  int
	match bool
	body  instr
}

func (jb *Job) processClauses(
	ctx context.Context,
	whens []*ast.When,
	otherwise *ast.Otherwise,
	cc *compileCtx,
	constMatch bool,
) ([]branch, instr, error) {
	branches := make([]branch, 0, len(whens))

	for _, wh := range whens {
		idx, err := jb.compileExpr(wh.Source, cc)
		if err != nil {
			return nil, nil, err
		}

		body, err := jb.processNodes(ctx, wh.Nodes, cc)
		if err != nil {
			return nil, nil, err
		}

		branches = append(branches, branch{
			cond:  idx,
			match: constMatch && jb.slots[idx].ev.Constant(),
			body:  body,
		})
	}

	if otherwise == nil {
		return branches, nil, nil
	}

	body, err := jb.processNodes(ctx, otherwise.Nodes, cc)
	if err != nil {
		return nil, nil, err
	}

	return branches, body, nil
}

// choose runs the first branch that matches subject (or whose
// condition is truthy), else otherwise when present.
func choose(
	rc *renderCtx,
	sc *runtime.Scope,
	subject cty.Value,
	branches []branch,
	otherwise instr,
) error {
	for _, br := range branches {
		cond, err := rc.eval(br.cond, sc)
		if err != nil {
			return err
		}

		matched := runtime.Truthy(cond)
		if br.match {
			matched = runtime.Equal(subject, cond)
		}

		if matched {
			return br.body(rc, sc)
		}
	}

	if otherwise != nil {
		return otherwise(rc, sc)
	}

	return nil
}

func (jb *Job) processIf(
	ctx context.Context,
	nd *ast.If,
	cc *compileCtx,
) (instr, error) {
	branches, otherwise, err := jb.processClauses(
		ctx, nd.When, nd.Otherwise, cc, false,
	)
	if err != nil {
		return nil, err
	}

	return scoped(func(rc *renderCtx, sc *runtime.Scope) error {
		return choose(rc, sc, cty.NilVal, branches, otherwise)
	}), nil
}

// processCase binds the subject, then tests each clause.
// Constant clauses compare equal to the subject; any other
// clause is evaluated for truth on its own.
func (jb *Job) processCase(
	ctx context.Context,
	nd *ast.Case,
	cc *compileCtx,
) (instr, error) {
	subject, err := jb.compileExpr(nd.Source, cc)
	if err != nil {
		return nil, err
	}

	branches, otherwise, err := jb.processClauses(
		ctx, nd.When, nd.Otherwise, cc, true,
	)
	if err != nil {
		return nil, err
	}

	name := nd.Name

	return scoped(func(rc *renderCtx, sc *runtime.Scope) error {
		val, err := rc.eval(subject, sc)
		if err != nil {
			return err
		}

		sc.Set(name, val)

		return choose(rc, sc, val, branches, otherwise)
	}), nil
}

func (jb *Job) processEach(
	ctx context.Context,
	nd *ast.Each,
	cc *compileCtx,
) (instr, error) {
	idx, err := jb.compileExpr(nd.Source, cc)
	if err != nil {
		return nil, err
	}

	body, err := jb.processNodes(ctx, nd.Nodes, cc)
	if err != nil {
		return nil, err
	}

	name := nd.Name

	return scoped(func(rc *renderCtx, sc *runtime.Scope) error {
		coll, err := rc.eval(idx, sc)
		if err != nil {
			return err
		}

		err = runtime.Iterate(coll, name, sc, func(it *runtime.Scope) error {
			return body(rc, it)
		})
		if err != nil {
			return locate(err, rc.slots[idx])
		}

		return nil
	}), nil
}
