// Package runtime holds the helpers every compiled template
// uses while rendering: variable scopes, conversion of render
// data into cty values, HTML escaping, iteration, truthiness and
// equality, and the standard library of helper functions
// exposed to expressions.
package runtime
