package runtime

import (
	"fmt"
	"math/big"

	json "github.com/goccy/go-json"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromNative converts a Go value into a cty value by way of its
// JSON form, so struct tags, maps and slices behave as they do
// when serialized. A cty.Value is returned unchanged.
func FromNative(val any) (cty.Value, error) {
	const errCtx = "converting value"

	switch vv := val.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return vv, nil
	}

	buf, err := json.Marshal(val)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", errCtx, err)
	}

	ty, err := ctyjson.ImpliedType(buf)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", errCtx, err)
	}

	out, err := ctyjson.Unmarshal(buf, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

// Bindings converts render input into top-level variables.
// A nil input yields no bindings; anything else must convert
// to an object or a map.
func Bindings(data any) (map[string]cty.Value, error) {
	const errCtx = "binding render data"

	if data == nil {
		return map[string]cty.Value{}, nil
	}

	val, err := FromNative(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if val.IsNull() {
		return map[string]cty.Value{}, nil
	}

	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf(
			"%s: expected an object, got %s",
			errCtx, ty.FriendlyName(),
		)
	}

	out := val.AsValueMap()
	if out == nil {
		out = map[string]cty.Value{}
	}

	return out, nil
}

// String renders a value as template output. Null renders as
// the empty string; collections render as JSON.
func String(val cty.Value) (string, error) {
	if val.IsNull() || !val.IsKnown() {
		return "", nil
	}

	switch ty := val.Type(); ty {
	case cty.String:
		return val.AsString(), nil
	case cty.Number:
		return formatNumber(val.AsBigFloat()), nil
	case cty.Bool:
		if val.True() {
			return "true", nil
		}

		return "false", nil
	}

	buf, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return "", fmt.Errorf("rendering value: %w", err)
	}

	return string(buf), nil
}

func formatNumber(bf *big.Float) string {
	if bf.IsInt() {
		return bf.Text('f', 0)
	}

	return bf.Text('g', 15)
}

// Truthy reports whether a value counts as true in a
// condition: null, false, zero and "" do not.
func Truthy(val cty.Value) bool {
	if val.IsNull() || !val.IsKnown() {
		return false
	}

	switch val.Type() {
	case cty.Bool:
		return val.True()
	case cty.Number:
		return val.AsBigFloat().Sign() != 0
	case cty.String:
		return val.AsString() != ""
	}

	return true
}

// Equal compares two values the way case clauses do. Values
// of the same type compare structurally; a number and a string
// compare as numbers when both convert.
func Equal(lhs, rhs cty.Value) bool {
	if lhs.IsNull() || rhs.IsNull() {
		return lhs.IsNull() && rhs.IsNull()
	}

	if !lhs.IsKnown() || !rhs.IsKnown() {
		return false
	}

	lt, rt := lhs.Type(), rhs.Type()
	if !lt.Equals(rt) && lt.IsPrimitiveType() && rt.IsPrimitiveType() {
		ln, lerr := convert.Convert(lhs, cty.Number)
		rn, rerr := convert.Convert(rhs, cty.Number)

		if lerr == nil && rerr == nil {
			lhs, rhs = ln, rn
		}
	}

	eq := lhs.Equals(rhs)

	return eq.IsKnown() && eq.True()
}
