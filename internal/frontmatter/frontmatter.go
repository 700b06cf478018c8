// Package frontmatter splits a leading YAML block from Markdown text and
// derives the document title.
package frontmatter

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Field is one top-level frontmatter entry, in document order.
type Field struct {
	Key   string
	Value string
}

// Split separates YAML frontmatter (between leading --- lines) from the
// Markdown body. ok is false when the text has no frontmatter, the block is
// not closed, or it is not a YAML mapping; body is then the whole text.
func Split(text string) (fields []Field, body string, ok bool) {
	if !strings.HasPrefix(text, delim+"\n") && !strings.HasPrefix(text, delim+"\r\n") {
		return nil, text, false
	}
	rest := text[strings.Index(text, "\n")+1:]

	end, after := closing(rest)
	if end < 0 {
		return nil, text, false
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(rest[:end]), &root); err != nil {
		return nil, text, false
	}
	if len(root.Content) == 0 {
		return []Field{}, rest[after:], true
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, text, false
	}

	fields = make([]Field, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		fields = append(fields, Field{Key: m.Content[i].Value, Value: scalar(m.Content[i+1])})
	}
	return fields, rest[after:], true
}

// closing finds the line holding only the closing delimiter. It returns the
// offset where that line starts and the offset just past it, or -1.
func closing(s string) (int, int) {
	off := 0
	for off <= len(s) {
		nl := strings.IndexByte(s[off:], '\n')
		line := s[off:]
		next := len(s)
		if nl >= 0 {
			line = s[off : off+nl]
			next = off + nl + 1
		}
		if strings.TrimRight(line, "\r") == delim {
			return off, next
		}
		if nl < 0 {
			break
		}
		off = next
	}
	return -1, -1
}

// scalar flattens a value node for display. Sequences are joined with
// commas; nested mappings are re-encoded inline.
func scalar(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			parts = append(parts, scalar(c))
		}
		return strings.Join(parts, ", ")
	case yaml.AliasNode:
		if n.Alias != nil {
			return scalar(n.Alias)
		}
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return ""
	}
	n2 := strings.TrimSpace(string(out))
	return strings.Join(strings.Fields(n2), " ")
}

// Title returns the frontmatter "title" if present, otherwise the first
// level-one ATX heading, otherwise the empty string.
func Title(text string) string {
	fields, body, _ := Split(text)
	for _, f := range fields {
		if f.Key == "title" && f.Value != "" {
			return f.Value
		}
	}

	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimRight(trimmed[2:], "# "))
		}
	}
	return ""
}
