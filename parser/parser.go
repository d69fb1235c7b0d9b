package parser

import (
	"fmt"
	"strings"

	"github.com/byte4ever/nanotemplates/ast"
)

// Error describes the first malformed construct found in a
// template.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

var elements = map[string]bool{
	"def":       true,
	"block":     true,
	"include":   true,
	"inline":    true,
	"var":       true,
	"if":        true,
	"when":      true,
	"otherwise": true,
	"case":      true,
	"each":      true,
}

// tags that must carry a name after the colon.
var named = map[string]bool{
	"def":   true,
	"block": true,
	"var":   true,
	"case":  true,
	"each":  true,
}

type parser struct {
	src string
	pos int
}

// tag is an opening element as read from the source.
type tag struct {
	name   string
	arg    string
	attrs  map[string]string
	closed bool
	offset int
}

// body is the content of an element up to its closing tag.
// Clauses are only collected inside if and case.
type body struct {
	nodes     []ast.Node
	whens     []*ast.When
	otherwise *ast.Otherwise
}

// Parse parses template markup. It fails on the first
// malformed construct.
func Parse(content string) ([]ast.Node, error) {
	pa := &parser{src: content}

	bd, err := pa.parseBody(nil)
	if err != nil {
		return nil, err
	}

	return bd.nodes, nil
}

// parseBody reads nodes until the closing tag of parent, or
// until the end of input when parent is nil.
func (pa *parser) parseBody(parent *tag) (*body, error) {
	bd := &body{}
	textStart := pa.pos

	flush := func(end int) {
		if end > textStart {
			bd.nodes = append(
				bd.nodes,
				&ast.Text{Text: pa.src[textStart:end]},
			)
		}
	}

	for pa.pos < len(pa.src) {
		start := pa.pos
		ch := pa.src[start]

		switch {
		case strings.HasPrefix(pa.src[start:], "<!--"):
			flush(start)

			node, err := pa.parseComment()
			if err != nil {
				return nil, err
			}

			bd.nodes = append(bd.nodes, node)
			textStart = pa.pos

		case strings.HasPrefix(pa.src[start:], "</"):
			name := pa.identAt(start + 2)
			if !elements[name] {
				pa.pos++
				continue
			}

			flush(start)

			if err := pa.parseClosing(parent); err != nil {
				return nil, err
			}

			return bd, nil

		case ch == '<':
			name := pa.identAt(start + 1)
			if !elements[name] || !pa.tagBoundary(start+1+len(name)) {
				pa.pos++
				continue
			}

			flush(start)

			if err := pa.parseElement(parent, bd); err != nil {
				return nil, err
			}

			textStart = pa.pos

		case (ch == '#' || ch == '!' || ch == '%') &&
			strings.HasPrefix(pa.src[start+1:], "{"):
			flush(start)

			node, err := pa.parseExpr()
			if err != nil {
				return nil, err
			}

			bd.nodes = append(bd.nodes, node)
			textStart = pa.pos

		default:
			pa.pos++
		}
	}

	flush(pa.pos)

	if parent != nil {
		return nil, pa.errorf(
			parent.offset, "unclosed <%s>", parent.name,
		)
	}

	return bd, nil
}

func (pa *parser) parseComment() (ast.Node, error) {
	start := pa.pos

	end := strings.Index(pa.src[start+4:], "-->")
	if end < 0 {
		return nil, pa.errorf(start, "unterminated comment")
	}

	content := pa.src[start+4 : start+4+end]
	pa.pos = start + 4 + end + 3

	return &ast.Comment{Content: content}, nil
}

// parseExpr reads #{...}, !{...} or %{...}. Braces nest and
// quoted strings are skipped.
func (pa *parser) parseExpr() (ast.Node, error) {
	start := pa.pos
	kind := pa.src[start]
	depth := 1
	i := start + 2

	for i < len(pa.src) && depth > 0 {
		switch pa.src[i] {
		case '"', '\'':
			i = pa.skipQuoted(i)
			continue
		case '{':
			depth++
		case '}':
			depth--
		}

		i++
	}

	if depth > 0 {
		return nil, pa.errorf(start, "unterminated expression")
	}

	source := strings.TrimSpace(pa.src[start+2 : i-1])
	if source == "" {
		return nil, pa.errorf(start, "empty expression")
	}

	pa.pos = i

	return &ast.Expr{
		Source: source,
		Buffer: kind != '%',
		Escape: kind == '#',
	}, nil
}

// skipQuoted returns the offset just past the string literal
// starting at i, honoring backslash escapes.
func (pa *parser) skipQuoted(i int) int {
	quote := pa.src[i]
	i++

	for i < len(pa.src) {
		switch pa.src[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		}

		i++
	}

	return i
}

func (pa *parser) parseClosing(parent *tag) error {
	start := pa.pos
	pa.pos += 2

	name := pa.identAt(pa.pos)
	pa.pos += len(name)

	var arg string

	if pa.pos < len(pa.src) && pa.src[pa.pos] == ':' {
		pa.pos++
		arg = pa.nameAt(pa.pos)
		pa.pos += len(arg)
	}

	pa.skipSpace()

	if pa.pos >= len(pa.src) || pa.src[pa.pos] != '>' {
		return pa.errorf(start, "malformed closing tag </%s>", name)
	}

	pa.pos++

	if parent == nil {
		return pa.errorf(start, "unexpected closing tag </%s>", name)
	}

	if name != parent.name || (arg != "" && arg != parent.arg) {
		return pa.errorf(
			start,
			"closing tag </%s> does not match <%s> at %s",
			name, parent.name, pa.location(parent.offset),
		)
	}

	return nil
}

func (pa *parser) parseTag() (*tag, error) {
	tg := &tag{offset: pa.pos, attrs: map[string]string{}}
	pa.pos++

	tg.name = pa.identAt(pa.pos)
	pa.pos += len(tg.name)

	if pa.pos < len(pa.src) && pa.src[pa.pos] == ':' {
		pa.pos++
		tg.arg = pa.nameAt(pa.pos)
		pa.pos += len(tg.arg)

		if tg.arg == "" {
			return nil, pa.errorf(
				tg.offset, "<%s:> requires a name", tg.name,
			)
		}
	}

	for {
		pa.skipSpace()

		if pa.pos >= len(pa.src) {
			return nil, pa.errorf(tg.offset, "unterminated <%s>", tg.name)
		}

		if strings.HasPrefix(pa.src[pa.pos:], "/>") {
			pa.pos += 2
			tg.closed = true

			return tg, nil
		}

		if pa.src[pa.pos] == '>' {
			pa.pos++
			return tg, nil
		}

		key, val, err := pa.parseAttr(tg)
		if err != nil {
			return nil, err
		}

		tg.attrs[key] = val
	}
}

func (pa *parser) parseAttr(tg *tag) (string, string, error) {
	start := pa.pos

	key := pa.nameAt(pa.pos)
	if key == "" {
		return "", "", pa.errorf(
			start, "unexpected %q in <%s>", pa.src[pa.pos], tg.name,
		)
	}

	pa.pos += len(key)
	pa.skipSpace()

	if pa.pos >= len(pa.src) || pa.src[pa.pos] != '=' {
		return "", "", pa.errorf(
			start, "attribute %s of <%s> has no value", key, tg.name,
		)
	}

	pa.pos++
	pa.skipSpace()

	if pa.pos >= len(pa.src) ||
		(pa.src[pa.pos] != '"' && pa.src[pa.pos] != '\'') {
		return "", "", pa.errorf(
			start, "attribute %s of <%s> must be quoted", key, tg.name,
		)
	}

	quote := pa.src[pa.pos]

	end := strings.IndexByte(pa.src[pa.pos+1:], quote)
	if end < 0 {
		return "", "", pa.errorf(start, "unterminated attribute %s", key)
	}

	val := pa.src[pa.pos+1 : pa.pos+1+end]
	pa.pos += end + 2

	return key, val, nil
}

func (pa *parser) identAt(i int) string {
	j := i
	for j < len(pa.src) && pa.src[j] >= 'a' && pa.src[j] <= 'z' {
		j++
	}

	return pa.src[i:j]
}

// nameAt reads an identifier as accepted for def, block and
// variable names: letters, digits, '_', '-' and '.'.
func (pa *parser) nameAt(i int) string {
	j := i

	for j < len(pa.src) {
		ch := pa.src[j]
		if ch == '_' || ch == '-' || ch == '.' ||
			(ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') {
			j++
			continue
		}

		break
	}

	return pa.src[i:j]
}

// tagBoundary reports whether the element name ending at i is
// followed by something that can continue a template tag.
func (pa *parser) tagBoundary(i int) bool {
	if i >= len(pa.src) {
		return false
	}

	switch pa.src[i] {
	case ':', '>', '/', ' ', '\t', '\r', '\n':
		return true
	}

	return false
}

func (pa *parser) skipSpace() {
	for pa.pos < len(pa.src) {
		switch pa.src[pa.pos] {
		case ' ', '\t', '\r', '\n':
			pa.pos++
		default:
			return
		}
	}
}

func (pa *parser) location(offset int) string {
	line, col := pa.lineCol(offset)
	return fmt.Sprintf("%d:%d", line, col)
}

func (pa *parser) lineCol(offset int) (int, int) {
	before := pa.src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')

	return line, col
}

func (pa *parser) errorf(offset int, format string, args ...any) *Error {
	line, col := pa.lineCol(offset)

	return &Error{
		Line:   line,
		Column: col,
		Msg:    fmt.Sprintf(format, args...),
	}
}
