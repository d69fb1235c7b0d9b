// Package expr defines the expression engine used by compiled
// templates and provides an implementation backed by the HCL
// native expression syntax.
//
// An Engine compiles expression source once; the resulting
// Evaluator is then run against a runtime.Scope on every render.
// Evaluators flag expressions that are compile-time constants,
// which the case element relies on.
package expr
