package preview

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Props is what a component receives for one element.
type Props struct {
	Tag      string
	Attrs    map[string]string
	Children []*html.Node
}

// Attr returns the named attribute or "".
func (p Props) Attr(key string) string {
	return p.Attrs[key]
}

// Component renders one element kind. Returning nil drops the element.
type Component func(Props) *html.Node

// Components maps element tags to their component.
type Components map[string]Component

// Resolver carries what the image component needs to resolve sources.
type Resolver struct {
	// Locators maps image alt text to a blob locator found in the document.
	Locators map[string]string
	// URL maps a resolved source to what the browser should fetch. Nil
	// keeps the source as is.
	URL func(string) string
}

// Element builds an element node. Attributes are emitted in key order.
func Element(tag string, attrs map[string]string, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: attrs[k]})
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		n.AppendChild(c)
	}
	return n
}

// Text builds a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Plain renders p as an element of its own tag with its own attributes.
func Plain(p Props) *html.Node {
	return Element(p.Tag, p.Attrs, p.Children...)
}

// styled returns a component that renders the element with a fixed class.
func styled(class string) Component {
	return func(p Props) *html.Node {
		return Element(p.Tag, withClass(p.Attrs, class), p.Children...)
	}
}

// withClass copies attrs and appends class to its class attribute.
func withClass(attrs map[string]string, class string) map[string]string {
	out := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	if prev := out["class"]; prev != "" {
		out["class"] = prev + " " + class
	} else {
		out["class"] = class
	}
	return out
}

func hasClass(attrs map[string]string, class string) bool {
	for _, c := range strings.Fields(attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// DefaultComponents returns the preview's element styling. Images are
// resolved through r.
func DefaultComponents(r Resolver) Components {
	return Components{
		"h1":         styled("text-3xl font-bold mb-4"),
		"h2":         styled("text-2xl font-semibold mb-3"),
		"h3":         styled("text-xl font-medium mb-2"),
		"p":          styled("mb-4 leading-relaxed"),
		"br":         Plain,
		"ul":         styled("mb-4 space-y-1 list-disc list-outside ml-6"),
		"ol":         styled("list-decimal list-outside ml-6 mb-4 space-y-1"),
		"li":         listItem,
		"input":      checkbox,
		"code":       code,
		"pre":        styled("code-block"),
		"blockquote": styled("border-l-4 pl-4 italic mb-4"),
		"img":        Image(r),
		"a":          link,
		"table":      table,
		"thead":      styled("table-head"),
		"tbody":      Plain,
		"tr":         styled("border-b"),
		"th":         styled("border px-4 py-2 text-left font-semibold"),
		"td":         styled("border px-4 py-2"),
	}
}

func listItem(p Props) *html.Node {
	if hasClass(p.Attrs, "task-list-item") {
		return Element("li", withClass(p.Attrs, "flex items-start gap-2 list-none"), p.Children...)
	}
	return Element("li", withClass(p.Attrs, "list-item"), p.Children...)
}

// checkbox renders task-list boxes as read-only. Other inputs are dropped.
func checkbox(p Props) *html.Node {
	if p.Attr("type") != "checkbox" {
		return nil
	}
	attrs := map[string]string{
		"type":     "checkbox",
		"disabled": "",
		"readonly": "",
		"class":    "mr-2 mt-1 flex-shrink-0",
	}
	if _, ok := p.Attrs["checked"]; ok {
		attrs["checked"] = ""
	}
	return Element("input", attrs)
}

// code styles inline spans apart from the code element inside a fenced block.
// Block code carries a data-block attribute set by the builder.
func code(p Props) *html.Node {
	if _, block := p.Attrs["data-block"]; block {
		attrs := withClass(p.Attrs, "text-sm font-mono")
		delete(attrs, "data-block")
		return Element("code", attrs, p.Children...)
	}
	return Element("code", withClass(p.Attrs, "code-inline px-1.5 py-0.5 rounded text-sm font-mono"), p.Children...)
}

func link(p Props) *html.Node {
	attrs := withClass(p.Attrs, "link")
	attrs["target"] = "_blank"
	attrs["rel"] = "noopener noreferrer"
	return Element("a", attrs, p.Children...)
}

func table(p Props) *html.Node {
	t := Element("table", withClass(p.Attrs, "min-w-full border-collapse border"), p.Children...)
	return Element("div", map[string]string{"class": "overflow-x-auto mb-4"}, t)
}

// Image resolves an img element's source: a blob locator registered under
// its alt text wins over the source written in the element. A blank result
// renders nothing, and a failed load hides the element.
func Image(r Resolver) Component {
	return func(p Props) *html.Node {
		alt := p.Attr("alt")
		src := p.Attr("src")
		if loc, ok := r.Locators[alt]; ok && loc != "" {
			src = loc
		}
		if strings.TrimSpace(src) == "" {
			return nil
		}
		if r.URL != nil {
			src = r.URL(src)
		}
		attrs := withClass(p.Attrs, "max-w-full h-auto mb-4 rounded border")
		attrs["src"] = src
		attrs["alt"] = alt
		attrs["onerror"] = "this.style.display='none'"
		return Element("img", attrs)
	}
}
