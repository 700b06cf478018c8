package editor

import (
	"regexp"
	"strings"
)

// indentUnit is inserted or removed by a single Tab / Shift-Tab.
const indentUnit = "  "

// listLineRe matches optional indentation, a bullet or ordinal marker and the
// mandatory whitespace after it.
var listLineRe = regexp.MustCompile(`^(\s*)([-*+]|\d+\.)\s`)

// ListLine is a line split around its list marker.
type ListLine struct {
	Indent string
	Marker string
	Rest   string
}

// ParseListLine reports whether line is a Markdown list item and splits it.
// Rest excludes the whitespace that follows the marker.
func ParseListLine(line string) (ListLine, bool) {
	m := listLineRe.FindStringSubmatchIndex(line)
	if m == nil {
		return ListLine{}, false
	}
	return ListLine{
		Indent: line[m[2]:m[3]],
		Marker: line[m[4]:m[5]],
		Rest:   line[m[1]:],
	}, true
}

// String rebuilds the line with a single space after the marker.
func (l ListLine) String() string {
	return l.Indent + l.Marker + " " + l.Rest
}

// Tab applies Tab (shift=false) or Shift-Tab (shift=true) at sel.
func Tab(text string, sel Selection, shift bool) Edit {
	if shift {
		return Outdent(text, sel)
	}
	return Indent(text, sel)
}

// Indent handles a plain Tab. A list line under the cursor gains two spaces
// of indentation in front of its marker; anywhere else two spaces replace the
// selection. The cursor advances by two either way.
func Indent(text string, sel Selection) Edit {
	sel = sel.Normalize(text)
	cur := locate(text, sel.Start)

	if ll, ok := ParseListLine(cur.line()); ok {
		ll.Indent += indentUnit
		return Edit{
			Text:    cur.replace(ll.String()),
			Cursor:  cur.pos16 + len(indentUnit),
			Changed: true,
		}
	}

	end := byteOffset(text, sel.End)
	return Edit{
		Text:    text[:cur.pos] + indentUnit + text[end:],
		Cursor:  cur.pos16 + len(indentUnit),
		Changed: true,
	}
}

// Outdent handles Shift-Tab. A list line loses two characters of its marker
// indentation when it has at least two; a plain line loses a two-space
// prefix. Anything else is left alone.
func Outdent(text string, sel Selection) Edit {
	sel = sel.Normalize(text)
	cur := locate(text, sel.Start)
	line := cur.line()

	var next string
	if ll, ok := ParseListLine(line); ok && len(ll.Indent) >= len(indentUnit) {
		ll.Indent = ll.Indent[len(indentUnit):]
		next = ll.String()
	} else if strings.HasPrefix(line, indentUnit) {
		next = line[len(indentUnit):]
	} else {
		return unchanged(text, sel)
	}

	// Never move the cursor onto the previous line.
	cursor := max(cur.pos16-len(indentUnit), cur.lineStart16)
	return Edit{
		Text:    cur.replace(next),
		Cursor:  cursor,
		Changed: true,
	}
}

// cursorLine locates the line that contains a cursor.
type cursorLine struct {
	lines       []string
	index       int
	pos         int // byte offset of the cursor
	pos16       int // UTF-16 offset of the cursor
	lineStart16 int // UTF-16 offset of the first character of the line
}

func locate(text string, off16 int) cursorLine {
	pos := byteOffset(text, off16)
	before := text[:pos]
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return cursorLine{
		lines:       strings.Split(text, "\n"),
		index:       strings.Count(before, "\n"),
		pos:         pos,
		pos16:       Len16(before),
		lineStart16: Len16(text[:lineStart]),
	}
}

func (c cursorLine) line() string {
	return c.lines[c.index]
}

// replace returns the full text with the cursor line swapped for line.
func (c cursorLine) replace(line string) string {
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	out[c.index] = line
	return strings.Join(out, "\n")
}
