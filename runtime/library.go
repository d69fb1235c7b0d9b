package runtime

import (
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Library is the read-only set of helpers threaded into the
// root scope of every render.
type Library struct {
	Functions map[string]function.Function
	Values    map[string]cty.Value
}

// Stdlib returns the default library: helpers from the cty
// standard library plus try and can.
func Stdlib() *Library {
	return &Library{
		Functions: map[string]function.Function{
			"abs":        stdlib.AbsoluteFunc,
			"ceil":       stdlib.CeilFunc,
			"floor":      stdlib.FloorFunc,
			"max":        stdlib.MaxFunc,
			"min":        stdlib.MinFunc,
			"pow":        stdlib.PowFunc,
			"upper":      stdlib.UpperFunc,
			"lower":      stdlib.LowerFunc,
			"title":      stdlib.TitleFunc,
			"trimspace":  stdlib.TrimSpaceFunc,
			"strlen":     stdlib.StrlenFunc,
			"substr":     stdlib.SubstrFunc,
			"join":       stdlib.JoinFunc,
			"split":      stdlib.SplitFunc,
			"replace":    stdlib.ReplaceFunc,
			"format":     stdlib.FormatFunc,
			"formatdate": stdlib.FormatDateFunc,
			"timeadd":    stdlib.TimeAddFunc,
			"jsonencode": stdlib.JSONEncodeFunc,
			"jsondecode": stdlib.JSONDecodeFunc,
			"length":     stdlib.LengthFunc,
			"keys":       stdlib.KeysFunc,
			"values":     stdlib.ValuesFunc,
			"concat":     stdlib.ConcatFunc,
			"coalesce":   stdlib.CoalesceFunc,
			"range":      stdlib.RangeFunc,
			"sort":       stdlib.SortFunc,
			"try":        tryfunc.TryFunc,
			"can":        tryfunc.CanFunc,
		},
	}
}
