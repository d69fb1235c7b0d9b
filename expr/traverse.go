package expr

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
)

// traverseName cannot be written in expression source, so a
// library function never shadows it.
const traverseName = "::traverse"

// traverseFunc walks a path of attribute names and index keys
// from a value. A missing attribute, key or index, or a null
// anywhere along the way, yields null instead of an error.
var traverseFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name:             "value",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowUnknown:     true,
			AllowDynamicType: true,
		},
		{
			Name:             "path",
			Type:             cty.DynamicPseudoType,
			AllowUnknown:     true,
			AllowDynamicType: true,
		},
	},
	Type: function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return traverse(args[0], args[1]), nil
	},
})

// builtins is the parent of every evaluation context.
var builtins = &hcl.EvalContext{
	Functions: map[string]function.Function{
		traverseName: traverseFunc,
	},
}

func traverse(val cty.Value, path cty.Value) cty.Value {
	null := cty.NullVal(cty.DynamicPseudoType)

	if !path.IsKnown() {
		return cty.DynamicVal
	}

	if path.IsNull() {
		return val
	}

	for _, key := range path.AsValueSlice() {
		if val.IsNull() || key.IsNull() {
			return null
		}

		if !val.IsKnown() || !key.IsKnown() {
			return cty.DynamicVal
		}

		ty := val.Type()

		switch {
		case ty.IsObjectType():
			name, ok := keyString(key)
			if !ok || !ty.HasAttribute(name) {
				return null
			}

			val = val.GetAttr(name)
		case ty.IsMapType():
			name, ok := keyString(key)
			if !ok {
				return null
			}

			idx := cty.StringVal(name)
			if has := val.HasIndex(idx); !has.IsKnown() || has.False() {
				return null
			}

			val = val.Index(idx)
		case ty.IsListType() || ty.IsTupleType():
			idx, ok := keyIndex(key)
			if !ok || idx < 0 || idx >= int64(val.LengthInt()) {
				return null
			}

			val = val.Index(cty.NumberIntVal(idx))
		default:
			return null
		}
	}

	return val
}

func keyString(key cty.Value) (string, bool) {
	str, err := convert.Convert(key, cty.String)
	if err != nil || str.IsNull() {
		return "", false
	}

	return str.AsString(), true
}

func keyIndex(key cty.Value) (int64, bool) {
	num, err := convert.Convert(key, cty.Number)
	if err != nil || num.IsNull() {
		return 0, false
	}

	bf := num.AsBigFloat()
	if !bf.IsInt() {
		return 0, false
	}

	idx, _ := bf.Int64()

	return idx, true
}

// forgiving rewrites ex in place so that attribute and index
// access goes through traverseFunc. It returns the expression
// to evaluate in place of ex.
func forgiving(ex hclsyntax.Expression) hclsyntax.Expression {
	switch ex := ex.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(ex.Traversal) < 2 {
			return ex
		}

		path, ok := literalPath(ex.Traversal[1:])
		if !ok {
			return ex
		}

		root := &hclsyntax.ScopeTraversalExpr{
			Traversal: ex.Traversal[:1],
			SrcRange:  ex.Traversal[0].SourceRange(),
		}

		return traverseCall(root, literal(path, ex.SrcRange), ex.SrcRange)
	case *hclsyntax.RelativeTraversalExpr:
		path, ok := literalPath(ex.Traversal)
		if !ok {
			ex.Source = forgiving(ex.Source)
			return ex
		}

		return traverseCall(
			forgiving(ex.Source), literal(path, ex.SrcRange), ex.SrcRange,
		)
	case *hclsyntax.IndexExpr:
		key := &hclsyntax.TupleConsExpr{
			Exprs:     []hclsyntax.Expression{forgiving(ex.Key)},
			SrcRange:  ex.Key.Range(),
			OpenRange: ex.OpenRange,
		}

		return traverseCall(forgiving(ex.Collection), key, ex.SrcRange)
	case *hclsyntax.ParenthesesExpr:
		ex.Expression = forgiving(ex.Expression)
	case *hclsyntax.BinaryOpExpr:
		ex.LHS = forgiving(ex.LHS)
		ex.RHS = forgiving(ex.RHS)
	case *hclsyntax.UnaryOpExpr:
		ex.Val = forgiving(ex.Val)
	case *hclsyntax.ConditionalExpr:
		ex.Condition = forgiving(ex.Condition)
		ex.TrueResult = forgiving(ex.TrueResult)
		ex.FalseResult = forgiving(ex.FalseResult)
	case *hclsyntax.FunctionCallExpr:
		for idx, arg := range ex.Args {
			ex.Args[idx] = forgiving(arg)
		}
	case *hclsyntax.TupleConsExpr:
		for idx, elem := range ex.Exprs {
			ex.Exprs[idx] = forgiving(elem)
		}
	case *hclsyntax.ObjectConsExpr:
		for idx := range ex.Items {
			ex.Items[idx].KeyExpr = forgiving(ex.Items[idx].KeyExpr)
			ex.Items[idx].ValueExpr = forgiving(ex.Items[idx].ValueExpr)
		}
	case *hclsyntax.ObjectConsKeyExpr:
		// A bare name is a literal key, not a lookup.
		if _, ok := ex.Wrapped.(*hclsyntax.ScopeTraversalExpr); !ok {
			ex.Wrapped = forgiving(ex.Wrapped)
		}
	case *hclsyntax.TemplateExpr:
		for idx, part := range ex.Parts {
			ex.Parts[idx] = forgiving(part)
		}
	case *hclsyntax.TemplateWrapExpr:
		ex.Wrapped = forgiving(ex.Wrapped)
	case *hclsyntax.TemplateJoinExpr:
		ex.Tuple = forgiving(ex.Tuple)
	case *hclsyntax.ForExpr:
		ex.CollExpr = forgiving(ex.CollExpr)
		ex.ValExpr = forgiving(ex.ValExpr)

		if ex.KeyExpr != nil {
			ex.KeyExpr = forgiving(ex.KeyExpr)
		}

		if ex.CondExpr != nil {
			ex.CondExpr = forgiving(ex.CondExpr)
		}
	case *hclsyntax.SplatExpr:
		ex.Source = forgiving(ex.Source)
		ex.Each = forgiving(ex.Each)
	}

	return ex
}

// literalPath converts attribute and index steps to path keys.
// Splat steps are not supported.
func literalPath(steps hcl.Traversal) (cty.Value, bool) {
	keys := make([]cty.Value, 0, len(steps))

	for _, step := range steps {
		switch st := step.(type) {
		case hcl.TraverseAttr:
			keys = append(keys, cty.StringVal(st.Name))
		case hcl.TraverseIndex:
			keys = append(keys, st.Key)
		default:
			return cty.NilVal, false
		}
	}

	return cty.TupleVal(keys), true
}

func literal(val cty.Value, rng hcl.Range) hclsyntax.Expression {
	return &hclsyntax.LiteralValueExpr{Val: val, SrcRange: rng}
}

func traverseCall(
	source hclsyntax.Expression,
	path hclsyntax.Expression,
	rng hcl.Range,
) hclsyntax.Expression {
	return &hclsyntax.FunctionCallExpr{
		Name:            traverseName,
		Args:            []hclsyntax.Expression{source, path},
		NameRange:       rng,
		OpenParenRange:  rng,
		CloseParenRange: rng,
	}
}
