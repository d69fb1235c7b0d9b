package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fasttemplate"
	"golang.org/x/net/html"
)

// DefaultSelector matches script tags whose id is the local
// path itself.
const DefaultSelector = "{path}"

// ScriptTag serves templates embedded in an HTML document as
// <script type="text/html" id="..."> elements. The id to look
// for is built from Selector, in which {path} is replaced with
// the requested local path.
type ScriptTag struct {
	doc      *html.Node
	selector string
}

// NewScriptTag parses the document read from rd. An empty
// selector means DefaultSelector.
func NewScriptTag(
	rd io.Reader,
	selector string,
) (*ScriptTag, error) {
	const errCtx = "parsing script tag document"

	doc, err := html.Parse(rd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if selector == "" {
		selector = DefaultSelector
	}

	return &ScriptTag{doc: doc, selector: selector}, nil
}

// Load returns the text of the first matching script tag.
func (st *ScriptTag) Load(
	_ context.Context,
	localPath string,
) (string, error) {
	const errCtx = "loading from script tag"

	local, err := Clean(localPath)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, localPath, err)
	}

	id := fasttemplate.ExecuteStringStd(
		st.selector, "{", "}", map[string]any{"path": local},
	)

	if nd := findScript(st.doc, id); nd != nil {
		return textContent(nd), nil
	}

	return "", fmt.Errorf("%s: %s: %w", errCtx, local, ErrNotFound)
}

func findScript(nd *html.Node, id string) *html.Node {
	if nd.Type == html.ElementNode &&
		nd.Data == "script" &&
		attrValue(nd, "type") == "text/html" &&
		attrValue(nd, "id") == id {
		return nd
	}

	for ch := nd.FirstChild; ch != nil; ch = ch.NextSibling {
		if found := findScript(ch, id); found != nil {
			return found
		}
	}

	return nil
}

func attrValue(nd *html.Node, key string) string {
	for _, at := range nd.Attr {
		if at.Key == key {
			return at.Val
		}
	}

	return ""
}

func textContent(nd *html.Node) string {
	var sb strings.Builder

	for ch := nd.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.TextNode {
			sb.WriteString(ch.Data)
		}
	}

	return sb.String()
}
