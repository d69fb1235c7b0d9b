package expr

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/byte4ever/nanotemplates/runtime"
)

// Pattern: Strategy -- the compiler only sees Engine, so the
// expression grammar can be swapped without touching it.

// Evaluator computes the value of one compiled expression.
type Evaluator interface {
	// Evaluate runs the expression against sc.
	Evaluate(sc *runtime.Scope) (cty.Value, error)

	// Constant reports whether the expression references no
	// variables and calls no functions.
	Constant() bool

	// Source returns the text the evaluator was compiled from.
	Source() string
}

// Engine compiles expression source into evaluators.
type Engine interface {
	Compile(source string) (Evaluator, error)
}

// EngineFunc adapts a plain function to the Engine
// interface.
type EngineFunc func(source string) (Evaluator, error)

// Compile delegates to the wrapped function.
func (f EngineFunc) Compile(source string) (Evaluator, error) {
	return f(source)
}
