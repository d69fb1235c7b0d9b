package parser

import (
	"strings"

	"github.com/byte4ever/nanotemplates/ast"
)

// parseElement reads one template element starting at the
// current '<' and appends its node (or clause) to bd.
func (pa *parser) parseElement(parent *tag, bd *body) error {
	tg, err := pa.parseTag()
	if err != nil {
		return err
	}

	if named[tg.name] && tg.arg == "" {
		return pa.errorf(
			tg.offset, "<%s> requires a name: <%s:name>", tg.name, tg.name,
		)
	}

	switch tg.name {
	case "when", "otherwise":
		return pa.parseClause(parent, tg, bd)
	}

	var node ast.Node

	switch tg.name {
	case "def":
		node, err = pa.parseDef(tg)
	case "block":
		node, err = pa.parseBlock(tg)
	case "include":
		node, err = pa.parseInclude(tg)
	case "inline":
		node, err = pa.parseInline(tg)
	case "var":
		node, err = pa.parseVar(tg)
	case "if":
		node, err = pa.parseIf(tg)
	case "case":
		node, err = pa.parseCase(tg)
	case "each":
		node, err = pa.parseEach(tg)
	}

	if err != nil {
		return err
	}

	bd.nodes = append(bd.nodes, node)

	return nil
}

// children parses the body of tg unless it is self-closing.
func (pa *parser) children(tg *tag) (*body, error) {
	if tg.closed {
		return &body{}, nil
	}

	return pa.parseBody(tg)
}

func (pa *parser) attr(tg *tag, key string) (string, error) {
	val, ok := tg.attrs[key]
	if !ok || strings.TrimSpace(val) == "" {
		return "", pa.errorf(
			tg.offset, "<%s> requires attribute %s", tg.name, key,
		)
	}

	return val, nil
}

// empty fails unless bd holds nothing but whitespace text.
func (pa *parser) empty(tg *tag, bd *body) error {
	for _, nd := range bd.nodes {
		if !isBlank(nd) {
			return pa.errorf(tg.offset, "<%s> must be empty", tg.name)
		}
	}

	return nil
}

func (pa *parser) parseDef(tg *tag) (ast.Node, error) {
	mode, err := ast.ParseMode(tg.attrs["mode"])
	if err != nil {
		return nil, pa.errorf(tg.offset, "<def:%s>: %v", tg.arg, err)
	}

	bd, err := pa.children(tg)
	if err != nil {
		return nil, err
	}

	return &ast.Def{Name: tg.arg, Mode: mode, Nodes: bd.nodes}, nil
}

func (pa *parser) parseBlock(tg *tag) (ast.Node, error) {
	bd, err := pa.children(tg)
	if err != nil {
		return nil, err
	}

	return &ast.Block{Name: tg.arg, Nodes: bd.nodes}, nil
}

func (pa *parser) parseInclude(tg *tag) (ast.Node, error) {
	file, err := pa.attr(tg, "file")
	if err != nil {
		return nil, err
	}

	bd, err := pa.children(tg)
	if err != nil {
		return nil, err
	}

	inc := &ast.Include{File: file}

	for _, nd := range bd.nodes {
		if def, ok := nd.(*ast.Def); ok {
			inc.Defs = append(inc.Defs, def)
			continue
		}

		if !isBlank(nd) {
			return nil, pa.errorf(
				tg.offset, "<include> may only contain <def> elements",
			)
		}
	}

	return inc, nil
}

func (pa *parser) parseInline(tg *tag) (ast.Node, error) {
	src, err := pa.attr(tg, "src")
	if err != nil {
		return nil, err
	}

	bd, err := pa.children(tg)
	if err != nil {
		return nil, err
	}

	if err := pa.empty(tg, bd); err != nil {
		return nil, err
	}

	// A leading '!' marks raw content.
	if strings.HasPrefix(src, "!") {
		return &ast.Inline{File: src[1:]}, nil
	}

	return &ast.Inline{File: src, Escape: true}, nil
}

func (pa *parser) parseVar(tg *tag) (ast.Node, error) {
	source, err := pa.attr(tg, "expr")
	if err != nil {
		return nil, err
	}

	bd, err := pa.children(tg)
	if err != nil {
		return nil, err
	}

	if err := pa.empty(tg, bd); err != nil {
		return nil, err
	}

	return &ast.Var{Name: tg.arg, Source: source}, nil
}

func (pa *parser) parseIf(tg *tag) (ast.Node, error) {
	bd, err := pa.clauses(tg)
	if err != nil {
		return nil, err
	}

	return &ast.If{When: bd.whens, Otherwise: bd.otherwise}, nil
}

func (pa *parser) parseCase(tg *tag) (ast.Node, error) {
	source, err := pa.attr(tg, "expr")
	if err != nil {
		return nil, err
	}

	bd, err := pa.clauses(tg)
	if err != nil {
		return nil, err
	}

	return &ast.Case{
		Name:      tg.arg,
		Source:    source,
		When:      bd.whens,
		Otherwise: bd.otherwise,
	}, nil
}

func (pa *parser) parseEach(tg *tag) (ast.Node, error) {
	source, err := pa.attr(tg, "in")
	if err != nil {
		return nil, err
	}

	bd, err := pa.children(tg)
	if err != nil {
		return nil, err
	}

	return &ast.Each{Name: tg.arg, Source: source, Nodes: bd.nodes}, nil
}

// clauses parses the body of an if or case, which may hold
// only when/otherwise clauses and whitespace.
func (pa *parser) clauses(tg *tag) (*body, error) {
	bd, err := pa.children(tg)
	if err != nil {
		return nil, err
	}

	if err := pa.empty(tg, bd); err != nil {
		return nil, pa.errorf(
			tg.offset,
			"<%s> may only contain <when> and <otherwise>", tg.name,
		)
	}

	return bd, nil
}

func (pa *parser) parseClause(parent *tag, tg *tag, bd *body) error {
	if parent == nil || (parent.name != "if" && parent.name != "case") {
		return pa.errorf(
			tg.offset, "<%s> outside of <if> or <case>", tg.name,
		)
	}

	if bd.otherwise != nil {
		return pa.errorf(
			tg.offset, "<%s> after <otherwise>", tg.name,
		)
	}

	if tg.name == "when" {
		source, err := pa.attr(tg, "expr")
		if err != nil {
			return err
		}

		inner, err := pa.children(tg)
		if err != nil {
			return err
		}

		bd.whens = append(
			bd.whens, &ast.When{Source: source, Nodes: inner.nodes},
		)

		return nil
	}

	inner, err := pa.children(tg)
	if err != nil {
		return err
	}

	bd.otherwise = &ast.Otherwise{Nodes: inner.nodes}

	return nil
}

func isBlank(nd ast.Node) bool {
	txt, ok := nd.(*ast.Text)
	return ok && strings.TrimSpace(txt.Text) == ""
}
