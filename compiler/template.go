package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zclconf/go-cty/cty"

	"github.com/byte4ever/nanotemplates/expr"
	"github.com/byte4ever/nanotemplates/runtime"
)

// instr is one compiled node: it writes to the render output
// and may read or bind variables in sc.
type instr func(rc *renderCtx, sc *runtime.Scope) error

// slot is an expression compiled by a Job, with the file it
// appeared in.
type slot struct {
	ev   expr.Evaluator
	file string
}

type renderCtx struct {
	out   *bytes.Buffer
	slots []slot
}

func (rc *renderCtx) eval(idx int, sc *runtime.Scope) (cty.Value, error) {
	sl := rc.slots[idx]

	val, err := sl.ev.Evaluate(sc)
	if err != nil {
		return cty.NilVal, &ExpressionError{
			Path:   sl.file,
			Source: sl.ev.Source(),
			Err:    err,
		}
	}

	return val, nil
}

// write appends the text form of val, escaped if asked to.
func (rc *renderCtx) write(idx int, val cty.Value, escape bool) error {
	str, err := runtime.String(val)
	if err != nil {
		sl := rc.slots[idx]

		return &ExpressionError{
			Path:   sl.file,
			Source: sl.ev.Source(),
			Err:    err,
		}
	}

	if escape {
		str = runtime.Escape(str)
	}

	rc.out.WriteString(str)

	return nil
}

// Template is a compiled entry template. It is immutable and
// safe for concurrent use.
type Template struct {
	path    string
	body    instr
	slots   []slot
	lib     *runtime.Library
	globals map[string]cty.Value
}

// Path returns the local path the template was compiled from.
func (tp *Template) Path() string {
	return tp.path
}

// Execute renders the template with data and writes the
// result to w. Nothing is written when rendering fails. Data
// may be nil, a map or a struct; it is converted through its
// JSON form.
func (tp *Template) Execute(w io.Writer, data any) error {
	const errCtx = "executing template"

	var buf bytes.Buffer

	if err := tp.run(&buf, data); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, tp.path, err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%s %s: %w", errCtx, tp.path, err)
	}

	return nil
}

// Render renders the template with data and returns the
// output text.
func (tp *Template) Render(data any) (string, error) {
	const errCtx = "rendering template"

	var buf bytes.Buffer

	if err := tp.run(&buf, data); err != nil {
		return "", fmt.Errorf("%s %s: %w", errCtx, tp.path, err)
	}

	return buf.String(), nil
}

func (tp *Template) run(buf *bytes.Buffer, data any) error {
	bindings, err := runtime.Bindings(data)
	if err != nil {
		return err
	}

	sc := runtime.NewScope(tp.lib, tp.globals, bindings)

	return tp.body(&renderCtx{out: buf, slots: tp.slots}, sc)
}

func nop(*renderCtx, *runtime.Scope) error {
	return nil
}

func literal(text string) instr {
	return func(rc *renderCtx, _ *runtime.Scope) error {
		rc.out.WriteString(text)
		return nil
	}
}

func sequence(seq ...instr) instr {
	switch len(seq) {
	case 0:
		return nop
	case 1:
		return seq[0]
	}

	return func(rc *renderCtx, sc *runtime.Scope) error {
		for _, in := range seq {
			if err := in(rc, sc); err != nil {
				return err
			}
		}

		return nil
	}
}

// scoped runs body in a child frame so its variable writes do
// not leak out.
func scoped(body instr) instr {
	return func(rc *renderCtx, sc *runtime.Scope) error {
		return body(rc, sc.Child())
	}
}

// locate fills in where an iteration error happened unless an
// inner each already did.
func locate(err error, sl slot) error {
	var ie *runtime.IterationError
	if errors.As(err, &ie) && ie.Path == "" {
		ie.Path = sl.file
		ie.Source = sl.ev.Source()
	}

	return err
}
