package ast

import "fmt"

// Node is one element of a parsed template.
type Node interface {
	node()
}

// Mode tells how a Def combines with the body of the Block
// it overrides.
type Mode int

// Override modes.
const (
	ModeOverride Mode = iota
	ModeAppend
	ModePrepend
)

// String returns the markup spelling of the mode.
func (mo Mode) String() string {
	switch mo {
	case ModeAppend:
		return "append"
	case ModePrepend:
		return "prepend"
	default:
		return "override"
	}
}

// ParseMode converts the markup spelling of a mode. An
// empty string means override.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "override", "replace":
		return ModeOverride, nil
	case "append":
		return ModeAppend, nil
	case "prepend":
		return ModePrepend, nil
	default:
		return ModeOverride, fmt.Errorf("unknown mode %q", s)
	}
}

// Text is a literal span copied verbatim to the output.
type Text struct {
	Text string
}

// Comment is an HTML comment; Content excludes the
// delimiters.
type Comment struct {
	Content string
}

// Def registers a named body for a matching Block.
type Def struct {
	Name  string
	Mode  Mode
	Nodes []Node
}

// Block is an overridable region with a default body.
type Block struct {
	Name  string
	Nodes []Node
}

// Include composes another template, optionally passing
// definitions that are visible only to that template and
// its descendants.
type Include struct {
	File string
	Defs []*Def
}

// Inline copies the raw content of another file without
// parsing it.
type Inline struct {
	File   string
	Escape bool
}

// Expr evaluates an expression. Buffer controls whether
// the value is written; Escape whether it is HTML-escaped.
type Expr struct {
	Source string
	Buffer bool
	Escape bool
}

// Var binds Name to the value of Source in the current
// scope.
type Var struct {
	Name   string
	Source string
}

// When is one conditional clause of an If or a Case.
type When struct {
	Source string
	Nodes  []Node
}

// Otherwise is the fallback clause of an If or a Case.
type Otherwise struct {
	Nodes []Node
}

// If renders the first clause whose condition is truthy.
type If struct {
	When      []*When
	Otherwise *Otherwise
}

// Case binds Name to the value of Source, then renders the
// first matching clause.
type Case struct {
	Name      string
	Source    string
	When      []*When
	Otherwise *Otherwise
}

// Each renders Nodes once per element of the collection
// produced by Source.
type Each struct {
	Name   string
	Source string
	Nodes  []Node
}

func (*Text) node()    {}
func (*Comment) node() {}
func (*Def) node()     {}
func (*Block) node()   {}
func (*Include) node() {}
func (*Inline) node()  {}
func (*Expr) node()    {}
func (*Var) node()     {}
func (*If) node()      {}
func (*Case) node()    {}
func (*Each) node()    {}
