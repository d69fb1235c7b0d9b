// Package ast defines the node variants produced by the markup
// parser and consumed by the compiler. A parsed template is an
// ordered slice of nodes; literal spans are Text nodes.
package ast
