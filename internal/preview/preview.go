// Package preview renders Markdown into the visual tree shown in the preview
// pane. Parsing is delegated to goldmark with GitHub-flavored extensions; every
// element is produced by a component looked up by tag, and embedded images
// that point at session-local blob locators are resolved by their alt text.
package preview

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"github.com/starford/mdlive/internal/frontmatter"
)

// DefaultPlaceholder is shown when the document is empty.
const DefaultPlaceholder = "The preview will appear here"

// Renderer converts document text into a visual tree. It is safe for
// concurrent use.
type Renderer struct {
	md          goldmark.Markdown
	overrides   Components
	locatorURL  func(string) string
	hl          *highlighter
	placeholder string
	hardWraps   bool
	frontmatter bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithComponents replaces the default components for the given tags.
func WithComponents(c Components) Option {
	return func(r *Renderer) {
		for tag, comp := range c {
			r.overrides[tag] = comp
		}
	}
}

// WithLocatorURL maps resolved image sources to browser-fetchable URLs.
func WithLocatorURL(fn func(string) string) Option {
	return func(r *Renderer) {
		r.locatorURL = fn
	}
}

// WithHighlight highlights fenced code blocks with the named chroma style.
// An empty name disables highlighting.
func WithHighlight(style string) Option {
	return func(r *Renderer) {
		if style == "" {
			r.hl = nil
			return
		}
		r.hl = newHighlighter(style)
	}
}

// WithPlaceholder sets the message shown for an empty document.
func WithPlaceholder(msg string) Option {
	return func(r *Renderer) {
		r.placeholder = msg
	}
}

// WithHardWraps controls whether single newlines inside a paragraph render
// as line breaks. It is on by default.
func WithHardWraps(on bool) Option {
	return func(r *Renderer) {
		r.hardWraps = on
	}
}

// WithFrontmatter renders a leading YAML block as a key/value table instead
// of Markdown.
func WithFrontmatter(on bool) Option {
	return func(r *Renderer) {
		r.frontmatter = on
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		overrides:   Components{},
		placeholder: DefaultPlaceholder,
		hardWraps:   true,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the visual tree for source. An empty source yields the
// placeholder tree.
func (r *Renderer) Render(source string) *html.Node {
	if source == "" {
		return r.placeholderTree()
	}

	body := source
	var fields []frontmatter.Field
	if r.frontmatter {
		if f, rest, ok := frontmatter.Split(source); ok {
			fields, body = f, rest
		}
	}

	src := []byte(body)
	doc := r.md.Parser().Parse(text.NewReader(src))

	comps := DefaultComponents(Resolver{
		Locators: ExtractLocators(source),
		URL:      r.locatorURL,
	})
	for tag, comp := range r.overrides {
		comps[tag] = comp
	}

	b := &builder{
		src:        src,
		components: comps,
		hl:         r.hl,
		hardWraps:  r.hardWraps,
	}
	var nodes []*html.Node
	if len(fields) > 0 {
		nodes = append(nodes, b.frontmatterTable(fields)...)
	}
	nodes = append(nodes, b.children(doc)...)
	return Element("div", map[string]string{"class": "markdown-body"}, nodes...)
}

// RenderHTML renders source and serializes the tree.
func (r *Renderer) RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, r.Render(source)); err != nil {
		return "", fmt.Errorf("preview: serialize: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) placeholderTree() *html.Node {
	msg := Element("p", map[string]string{"class": "placeholder-text"}, Text(r.placeholder))
	box := Element("div", map[string]string{"class": "placeholder"}, msg)
	return Element("div", map[string]string{"class": "markdown-body"}, box)
}
