package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/byte4ever/nanotemplates/expr"
	"github.com/byte4ever/nanotemplates/runtime"
)

func scope(tb testing.TB, data map[string]any) *runtime.Scope {
	tb.Helper()

	bindings, err := runtime.Bindings(data)
	require.NoError(tb, err)

	return runtime.NewScope(runtime.Stdlib(), bindings)
}

func TestHCL_evaluate(t *testing.T) {
	t.Parallel()

	sc := scope(t, map[string]any{
		"user":  map[string]any{"name": "alice", "age": 30},
		"items": []string{"a", "b", "c"},
	})

	tests := []struct {
		source string
		want   cty.Value
	}{
		{source: `user.name`, want: cty.StringVal("alice")},
		{source: `user["age"] + 1`, want: cty.NumberIntVal(31)},
		{source: `items[1]`, want: cty.StringVal("b")},
		{source: `length(items)`, want: cty.NumberIntVal(3)},
		{source: `upper(user.name)`, want: cty.StringVal("ALICE")},
		{source: `user.age >= 18 ? "adult" : "minor"`, want: cty.StringVal("adult")},
		{source: `join("-", [for s in items : upper(s)])`, want: cty.StringVal("A-B-C")},
		{source: `"hi ${user.name}"`, want: cty.StringVal("hi alice")},
		{source: `missing == null`, want: cty.True},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			ev, err := expr.HCL{}.Compile(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.source, ev.Source())

			got, err := ev.Evaluate(sc)
			require.NoError(t, err)
			assert.True(
				t, got.RawEquals(tt.want),
				"got %s, want %s", got.GoString(), tt.want.GoString(),
			)
		})
	}
}

func TestHCL_evaluate_missing_paths(t *testing.T) {
	t.Parallel()

	sc := scope(t, map[string]any{
		"user": map[string]any{"name": "alice"},
		"users": []any{
			map[string]any{"name": "bob", "nick": "b"},
			map[string]any{"name": "carol"},
		},
		"items": []string{"a", "b", "c"},
		"idx":   2,
	})

	null := cty.NullVal(cty.DynamicPseudoType)

	tests := []struct {
		source string
		want   cty.Value
	}{
		{source: `user.nick`, want: null},
		{source: `missing.a.b`, want: null},
		{source: `user.name.first`, want: null},
		{source: `user["nick"]`, want: null},
		{source: `items[5]`, want: null},
		{source: `items[-1]`, want: null},
		{source: `items[missing]`, want: null},
		{source: `items[idx]`, want: cty.StringVal("c")},
		{source: `users[1].nick`, want: null},
		{source: `users[0].nick`, want: cty.StringVal("b")},
		{source: `(user).nick`, want: null},
		{source: `user.nick == null`, want: cty.True},
		{source: `user.nick != null ? user.nick : "anon"`, want: cty.StringVal("anon")},
		{source: `length([for u in users : u if u.nick != null])`, want: cty.NumberIntVal(1)},
		{source: `can(1 + "x")`, want: cty.False},
		{source: `try(1 + "x", "fallback")`, want: cty.StringVal("fallback")},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			ev, err := expr.HCL{}.Compile(tt.source)
			require.NoError(t, err)

			got, err := ev.Evaluate(sc)
			require.NoError(t, err)
			assert.True(
				t, got.RawEquals(tt.want),
				"got %s, want %s", got.GoString(), tt.want.GoString(),
			)
		})
	}
}

func TestHCL_constant(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		`"admin"`:            true,
		`1 + 2`:              true,
		`[1, "a"]`:           true,
		`[for x in [1] : x]`: true,
		`role`:               false,
		`r == "guest"`:       false,
		`upper("a")`:         false,
		`{ k = v }`:          false,
	}

	for source, want := range tests {
		ev, err := expr.HCL{}.Compile(source)
		require.NoError(t, err, source)
		assert.Equal(t, want, ev.Constant(), source)
	}
}

func TestHCL_compile_error(t *testing.T) {
	t.Parallel()

	_, err := expr.HCL{}.Compile(`1 +`)
	require.Error(t, err)
}

func TestHCL_evaluate_error(t *testing.T) {
	t.Parallel()

	ev, err := expr.HCL{}.Compile(`nope(1)`)
	require.NoError(t, err)

	_, err = ev.Evaluate(scope(t, nil))
	require.Error(t, err)
}

func TestEngineFunc(t *testing.T) {
	t.Parallel()

	var called string

	eng := expr.EngineFunc(func(source string) (expr.Evaluator, error) {
		called = source
		return expr.HCL{}.Compile(source)
	})

	ev, err := eng.Compile(`1`)
	require.NoError(t, err)
	assert.Equal(t, "1", called)
	assert.True(t, ev.Constant())
}
