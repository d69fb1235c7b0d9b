// Package parser turns template markup into an ordered slice of
// ast nodes. Plain HTML passes through as text; only the template
// elements (def, block, include, inline, var, if, case, each and
// their clauses), comments and the #{}, !{} and %{} expression
// forms are recognized.
package parser
