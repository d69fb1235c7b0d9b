package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/nanotemplates/ast"
	"github.com/byte4ever/nanotemplates/parser"
)

func TestParse_text_and_expressions(t *testing.T) {
	t.Parallel()

	nodes, err := parser.Parse(`a #{ x.y } b !{raw} %{ silent({k = "}"}) }`)
	require.NoError(t, err)

	assert.Equal(t, []ast.Node{
		&ast.Text{Text: "a "},
		&ast.Expr{Source: "x.y", Buffer: true, Escape: true},
		&ast.Text{Text: " b "},
		&ast.Expr{Source: "raw", Buffer: true},
		&ast.Text{Text: " "},
		&ast.Expr{Source: `silent({k = "}"})`},
	}, nodes)
}

func TestParse_html_passes_through(t *testing.T) {
	t.Parallel()

	src := `<div class="x"><p>#50 & 100%</p><iffy/><eachother></div>`

	nodes, err := parser.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []ast.Node{&ast.Text{Text: src}}, nodes)
}

func TestParse_comment(t *testing.T) {
	t.Parallel()

	nodes, err := parser.Parse(`a<!-- <if> #{x} -->b`)
	require.NoError(t, err)

	assert.Equal(t, []ast.Node{
		&ast.Text{Text: "a"},
		&ast.Comment{Content: " <if> #{x} "},
		&ast.Text{Text: "b"},
	}, nodes)
}

func TestParse_def_and_block(t *testing.T) {
	t.Parallel()

	nodes, err := parser.Parse(
		`<def:title mode="append">T</def:title><block:title>B</block>`,
	)
	require.NoError(t, err)

	assert.Equal(t, []ast.Node{
		&ast.Def{
			Name:  "title",
			Mode:  ast.ModeAppend,
			Nodes: []ast.Node{&ast.Text{Text: "T"}},
		},
		&ast.Block{
			Name:  "title",
			Nodes: []ast.Node{&ast.Text{Text: "B"}},
		},
	}, nodes)
}

func TestParse_include_with_defs(t *testing.T) {
	t.Parallel()

	nodes, err := parser.Parse(`<include file="layout.html">
  <def:a>A</def:a>
  <def:b mode="prepend">B</def:b>
</include>`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	inc, ok := nodes[0].(*ast.Include)
	require.True(t, ok)
	assert.Equal(t, "layout.html", inc.File)
	require.Len(t, inc.Defs, 2)
	assert.Equal(t, "a", inc.Defs[0].Name)
	assert.Equal(t, ast.ModePrepend, inc.Defs[1].Mode)
}

func TestParse_inline_raw_prefix(t *testing.T) {
	t.Parallel()

	nodes, err := parser.Parse(`<inline src="a.css"/><inline src='!b.js'></inline>`)
	require.NoError(t, err)

	assert.Equal(t, []ast.Node{
		&ast.Inline{File: "a.css", Escape: true},
		&ast.Inline{File: "b.js"},
	}, nodes)
}

func TestParse_var_if_case_each(t *testing.T) {
	t.Parallel()

	nodes, err := parser.Parse(`<var:n expr="1 + 1"/>` +
		`<if><when expr="n > 1">big</when><otherwise>small</otherwise></if>` +
		`<case:r expr="role"><when expr='"a"'>A</when></case:r>` +
		`<each:u in="users">#{u}</each:u>`)
	require.NoError(t, err)

	assert.Equal(t, []ast.Node{
		&ast.Var{Name: "n", Source: "1 + 1"},
		&ast.If{
			When: []*ast.When{{
				Source: "n > 1",
				Nodes:  []ast.Node{&ast.Text{Text: "big"}},
			}},
			Otherwise: &ast.Otherwise{
				Nodes: []ast.Node{&ast.Text{Text: "small"}},
			},
		},
		&ast.Case{
			Name:   "r",
			Source: "role",
			When: []*ast.When{{
				Source: `"a"`,
				Nodes:  []ast.Node{&ast.Text{Text: "A"}},
			}},
		},
		&ast.Each{
			Name:   "u",
			Source: "users",
			Nodes: []ast.Node{
				&ast.Expr{Source: "u", Buffer: true, Escape: true},
			},
		},
	}, nodes)
}

func TestParse_errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{name: "unclosed element", src: `<each:u in="x">`, wantMsg: "unclosed <each>"},
		{name: "mismatched close", src: `<def:a></block:a>`, wantMsg: "does not match"},
		{name: "stray close", src: `x</if>`, wantMsg: "unexpected closing tag"},
		{name: "missing name", src: `<def>x</def>`, wantMsg: "requires a name"},
		{name: "missing attribute", src: `<each:u>x</each:u>`, wantMsg: "requires attribute in"},
		{name: "unquoted attribute", src: `<var:a expr=1/>`, wantMsg: "must be quoted"},
		{name: "bad mode", src: `<def:a mode="merge">x</def:a>`, wantMsg: "<def:a>"},
		{name: "when outside if", src: `<when expr="x">y</when>`, wantMsg: "outside of <if>"},
		{name: "text in if", src: `<if>text</if>`, wantMsg: "may only contain"},
		{name: "when after otherwise", src: `<if><otherwise/><when expr="x"/></if>`, wantMsg: "after <otherwise>"},
		{name: "text in include", src: `<include file="a">x</include>`, wantMsg: "only contain <def>"},
		{name: "var with body", src: `<var:a expr="1">x</var:a>`, wantMsg: "must be empty"},
		{name: "unterminated expression", src: `#{ a`, wantMsg: "unterminated expression"},
		{name: "empty expression", src: `#{ }`, wantMsg: "empty expression"},
		{name: "unterminated comment", src: `<!-- a`, wantMsg: "unterminated comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parser.Parse(tt.src)
			require.Error(t, err)

			var pe *parser.Error
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, pe.Msg, tt.wantMsg)
		})
	}
}

func TestParse_error_position(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse("line one\n  <each:u in=\"x\">")
	require.Error(t, err)

	var pe *parser.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 3, pe.Column)
	assert.Equal(t, "2:3: unclosed <each>", pe.Error())
}
