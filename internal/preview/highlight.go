package preview

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// highlighter turns fenced code into inline-styled spans.
type highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newHighlighter(style string) *highlighter {
	return &highlighter{
		style:     styles.Get(style),
		formatter: chromahtml.New(chromahtml.PreventSurroundingPre(true)),
	}
}

// nodes returns the highlighted children of a code element, or false when the
// language is unknown.
func (h *highlighter) nodes(lang, code string) ([]*html.Node, bool) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil, false
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return nil, false
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "code", DataAtom: atom.Code}
	nodes, err := html.ParseFragment(&buf, ctx)
	if err != nil {
		return nil, false
	}
	return nodes, true
}
