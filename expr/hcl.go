package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/byte4ever/nanotemplates/runtime"
)

// HCL is the default engine. It accepts HCL native syntax:
// literals, attribute and index access, arithmetic, comparison,
// logic, conditionals, for expressions and function calls.
type HCL struct{}

// Compile parses source as a single HCL expression.
func (HCL) Compile(source string) (Evaluator, error) {
	const errCtx = "compiling expression"

	ex, diags := hclsyntax.ParseExpression(
		[]byte(source), "expression", hcl.InitialPos,
	)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w", errCtx, diags)
	}

	roots := rootNames(ex)

	return &hclEvaluator{
		source:   source,
		roots:    roots,
		constant: len(roots) == 0 && !callsFunctions(ex),
		expr:     forgiving(ex),
	}, nil
}

type hclEvaluator struct {
	source   string
	expr     hclsyntax.Expression
	roots    []string
	constant bool
}

// Evaluate binds every root name the expression references.
// Names missing from the scope evaluate to null, and so does
// attribute or index access that finds nothing.
func (ev *hclEvaluator) Evaluate(sc *runtime.Scope) (cty.Value, error) {
	vars := make(map[string]cty.Value, len(ev.roots))

	for _, name := range ev.roots {
		val, ok := sc.Lookup(name)
		if !ok {
			val = cty.NullVal(cty.DynamicPseudoType)
		}

		vars[name] = val
	}

	ctx := builtins.NewChild()
	ctx.Variables = vars
	ctx.Functions = sc.Functions()

	val, diags := ev.expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}

	return val, nil
}

func (ev *hclEvaluator) Constant() bool {
	return ev.constant
}

func (ev *hclEvaluator) Source() string {
	return ev.source
}

// rootNames lists the distinct variable names referenced by
// ex, in first-use order. Names local to for expressions are
// not included.
func rootNames(ex hclsyntax.Expression) []string {
	var names []string

	seen := make(map[string]struct{})

	for _, tr := range ex.Variables() {
		name := tr.RootName()
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}

func callsFunctions(ex hclsyntax.Expression) bool {
	found := false

	hclsyntax.VisitAll(ex, func(nd hclsyntax.Node) hcl.Diagnostics {
		if _, ok := nd.(*hclsyntax.FunctionCallExpr); ok {
			found = true
		}

		return nil
	})

	return found
}
