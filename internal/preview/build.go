package preview

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"

	"github.com/starford/mdlive/internal/frontmatter"
)

// builder turns a goldmark AST into a visual tree, dispatching every element
// through the component map.
type builder struct {
	src        []byte
	components Components
	hl         *highlighter
	hardWraps  bool
}

func (b *builder) children(n ast.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, b.node(c)...)
	}
	return out
}

func (b *builder) element(tag string, attrs map[string]string, children []*html.Node) []*html.Node {
	if attrs == nil {
		attrs = map[string]string{}
	}
	comp := b.components[tag]
	if comp == nil {
		comp = Plain
	}
	n := comp(Props{Tag: tag, Attrs: attrs, Children: children})
	if n == nil {
		return nil
	}
	return []*html.Node{n}
}

func (b *builder) node(n ast.Node) []*html.Node {
	switch n := n.(type) {
	case *ast.Document, *ast.TextBlock:
		return b.children(n)

	case *ast.Heading:
		return b.element("h"+strconv.Itoa(n.Level), nil, b.children(n))

	case *ast.Paragraph:
		return b.element("p", nil, b.children(n))

	case *ast.ThematicBreak:
		return b.element("hr", nil, nil)

	case *ast.Blockquote:
		return b.element("blockquote", nil, b.children(n))

	case *ast.List:
		return b.list(n)

	case *ast.ListItem:
		var attrs map[string]string
		if isTaskItem(n) {
			attrs = map[string]string{"class": "task-list-item"}
		}
		return b.element("li", attrs, b.children(n))

	case *ast.FencedCodeBlock:
		return b.codeBlock(string(n.Language(b.src)), b.lines(n))

	case *ast.CodeBlock:
		return b.codeBlock("", b.lines(n))

	case *ast.HTMLBlock:
		// Raw HTML is shown as text, never interpreted.
		raw := b.lines(n)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(b.src))
		}
		return []*html.Node{Text(raw)}

	case *ast.Text:
		return b.text(n)

	case *ast.String:
		return []*html.Node{Text(string(n.Value))}

	case *ast.CodeSpan:
		return b.element("code", nil, []*html.Node{Text(b.codeSpan(n))})

	case *ast.Emphasis:
		tag := "em"
		if n.Level >= 2 {
			tag = "strong"
		}
		return b.element(tag, nil, b.children(n))

	case *ast.Link:
		attrs := map[string]string{"href": safeURL(string(n.Destination))}
		if len(n.Title) > 0 {
			attrs["title"] = string(n.Title)
		}
		return b.element("a", attrs, b.children(n))

	case *ast.AutoLink:
		href := string(n.URL(b.src))
		if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(n.URL(b.src)), []byte("mailto:")) {
			href = "mailto:" + href
		}
		attrs := map[string]string{"href": safeURL(href)}
		return b.element("a", attrs, []*html.Node{Text(string(n.Label(b.src)))})

	case *ast.Image:
		attrs := map[string]string{
			"src": safeURL(string(n.Destination)),
			"alt": plainText(n, b.src),
		}
		if len(n.Title) > 0 {
			attrs["title"] = string(n.Title)
		}
		return b.element("img", attrs, nil)

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(b.src))
		}
		return []*html.Node{Text(buf.String())}

	case *east.Strikethrough:
		return b.element("del", nil, b.children(n))

	case *east.TaskCheckBox:
		attrs := map[string]string{"type": "checkbox"}
		if n.IsChecked {
			attrs["checked"] = ""
		}
		return b.element("input", attrs, nil)

	case *east.Table:
		return b.table(n)
	}

	return b.children(n)
}

func (b *builder) list(n *ast.List) []*html.Node {
	tag := "ul"
	attrs := map[string]string{}
	if n.IsOrdered() {
		tag = "ol"
		if n.Start != 1 {
			attrs["start"] = strconv.Itoa(n.Start)
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if isTaskItem(c) {
			attrs["class"] = "contains-task-list"
			break
		}
	}
	return b.element(tag, attrs, b.children(n))
}

// isTaskItem reports whether a list item starts with a task checkbox.
func isTaskItem(n ast.Node) bool {
	first := n.FirstChild()
	if first == nil {
		return false
	}
	_, ok := first.FirstChild().(*east.TaskCheckBox)
	return ok
}

func (b *builder) codeBlock(lang, code string) []*html.Node {
	attrs := map[string]string{"data-block": ""}
	if lang != "" {
		attrs["class"] = "language-" + lang
	}
	body := []*html.Node{Text(code)}
	if b.hl != nil && lang != "" {
		if nodes, ok := b.hl.nodes(lang, code); ok {
			body = nodes
		}
	}
	inner := b.element("code", attrs, body)
	return b.element("pre", nil, inner)
}

func (b *builder) table(n *east.Table) []*html.Node {
	var head, body []*html.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch row := c.(type) {
		case *east.TableHeader:
			head = append(head, b.element("tr", nil, b.cells(row, "th"))...)
		case *east.TableRow:
			body = append(body, b.element("tr", nil, b.cells(row, "td"))...)
		}
	}
	parts := b.element("thead", nil, head)
	if len(body) > 0 {
		parts = append(parts, b.element("tbody", nil, body)...)
	}
	return b.element("table", nil, parts)
}

func (b *builder) cells(row ast.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		var attrs map[string]string
		if cell, ok := c.(*east.TableCell); ok && cell.Alignment != east.AlignNone {
			attrs = map[string]string{"style": "text-align:" + cell.Alignment.String()}
		}
		out = append(out, b.element(tag, attrs, b.children(c))...)
	}
	return out
}

func (b *builder) text(n *ast.Text) []*html.Node {
	value := n.Segment.Value(b.src)
	if !n.IsRaw() {
		value = unescape(value)
	}
	out := []*html.Node{Text(string(value))}
	switch {
	case n.HardLineBreak() || (n.SoftLineBreak() && b.hardWraps):
		out = append(out, b.element("br", nil, nil)...)
	case n.SoftLineBreak():
		out = append(out, Text("\n"))
	}
	return out
}

// codeSpan joins the raw segments of an inline code span. Line endings inside
// a span read as spaces.
func (b *builder) codeSpan(n *ast.CodeSpan) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		v := t.Segment.Value(b.src)
		if bytes.HasSuffix(v, []byte("\n")) {
			buf.Write(v[:len(v)-1])
			buf.WriteByte(' ')
			continue
		}
		buf.Write(v)
	}
	return buf.String()
}

// lines joins the raw source lines of a block node.
func (b *builder) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(b.src))
	}
	return buf.String()
}

// plainText flattens the text content of n for image alt text.
func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			v := c.Segment.Value(src)
			if !c.IsRaw() {
				v = unescape(v)
			}
			buf.Write(v)
			if c.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func unescape(v []byte) []byte {
	return util.UnescapePunctuations(util.ResolveNumericReferences(util.ResolveEntityNames(v)))
}

// frontmatterTable lays out frontmatter fields as a one-row table, keys in
// the header.
func (b *builder) frontmatterTable(fields []frontmatter.Field) []*html.Node {
	var heads, cells []*html.Node
	for _, f := range fields {
		heads = append(heads, b.element("th", nil, []*html.Node{Text(f.Key)})...)
		cells = append(cells, b.element("td", nil, []*html.Node{Text(f.Value)})...)
	}
	thead := b.element("thead", nil, b.element("tr", nil, heads))
	tbody := b.element("tbody", nil, b.element("tr", nil, cells))
	return b.element("table", map[string]string{"class": "frontmatter"}, append(thead, tbody...))
}
