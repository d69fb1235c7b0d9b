package runtime

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Scope is one frame of variable bindings. Lookups fall back
// to the parent frame; writes always land in the receiver, so a
// child never changes what its parent sees.
type Scope struct {
	parent *Scope
	vars   map[string]cty.Value
	lib    *Library
}

// NewScope builds the root frame of a render. It copies the
// library values first, then each layer in order, so later
// layers shadow earlier ones. Neither lib nor the layers are
// modified afterwards.
func NewScope(
	lib *Library,
	layers ...map[string]cty.Value,
) *Scope {
	if lib == nil {
		lib = &Library{}
	}

	vars := make(map[string]cty.Value, len(lib.Values))

	for name, val := range lib.Values {
		vars[name] = val
	}

	for _, layer := range layers {
		for name, val := range layer {
			vars[name] = val
		}
	}

	return &Scope{vars: vars, lib: lib}
}

// Child returns an isolated frame that reads through to sc.
func (sc *Scope) Child() *Scope {
	return &Scope{parent: sc, lib: sc.lib}
}

// Lookup finds name in the nearest frame that binds it.
func (sc *Scope) Lookup(name string) (cty.Value, bool) {
	for fr := sc; fr != nil; fr = fr.parent {
		if val, ok := fr.vars[name]; ok {
			return val, true
		}
	}

	return cty.NilVal, false
}

// Set binds name in this frame.
func (sc *Scope) Set(name string, val cty.Value) {
	if sc.vars == nil {
		sc.vars = make(map[string]cty.Value)
	}

	sc.vars[name] = val
}

// Functions returns the helper functions available to
// expressions evaluated in this scope.
func (sc *Scope) Functions() map[string]function.Function {
	return sc.lib.Functions
}
