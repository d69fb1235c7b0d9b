// Package compiler turns templates into executable closure
// trees and caches the results.
//
// A Compiler owns the loader, the expression engine and an
// optional bounded result cache. Each cache miss runs a fresh
// Job, which walks the parsed template depth-first, following
// includes and inlines, resolving def/block overrides against
// its chain of compile contexts, and appending every expression
// to an index-stable slot list. The product is a Template: an
// immutable routine from input data to output text.
package compiler
