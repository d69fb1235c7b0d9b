package runtime

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// IterationError reports an each over a value that is neither
// null, a sequence nor a keyed mapping. Path and Source are
// filled in by the compiled template when known.
type IterationError struct {
	Path   string
	Source string
	Type   string
}

func (e *IterationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("non-iterable value of type %s", e.Type)
	}

	return fmt.Sprintf(
		"each over %q in %s: non-iterable value of type %s",
		e.Source, e.Path, e.Type,
	)
}

// Iterate calls body once per element of coll. Sequences are
// visited in order, mappings in ascending key order, and null
// yields no calls. Each call gets a fresh child of sc binding
// name, name_index and name_key (position or key), name_last
// and name_has_next.
func Iterate(
	coll cty.Value,
	name string,
	sc *Scope,
	body func(*Scope) error,
) error {
	if coll.IsNull() {
		return nil
	}

	if !coll.IsKnown() {
		return &IterationError{Type: "unknown"}
	}

	ty := coll.Type()

	switch {
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		n := coll.LengthInt()
		idx := 0

		for it := coll.ElementIterator(); it.Next(); idx++ {
			_, val := it.Element()

			err := body(bind(
				sc, name, cty.NumberIntVal(int64(idx)), val, idx == n-1,
			))
			if err != nil {
				return err
			}
		}

	case ty.IsMapType() || ty.IsObjectType():
		elems := coll.AsValueMap()

		keys := make([]string, 0, len(elems))
		for key := range elems {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for idx, key := range keys {
			err := body(bind(
				sc, name, cty.StringVal(key), elems[key], idx == len(keys)-1,
			))
			if err != nil {
				return err
			}
		}

	default:
		return &IterationError{Type: ty.FriendlyName()}
	}

	return nil
}

func bind(
	sc *Scope,
	name string,
	key cty.Value,
	val cty.Value,
	last bool,
) *Scope {
	it := sc.Child()
	it.Set(name, val)
	it.Set(name+"_index", key)
	it.Set(name+"_key", key)
	it.Set(name+"_last", cty.BoolVal(last))
	it.Set(name+"_has_next", cty.BoolVal(!last))

	return it
}
