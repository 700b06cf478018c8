package editor

import (
	"strings"
	"testing"
)

func TestParseListLine(t *testing.T) {
	tests := []struct {
		line   string
		ok     bool
		indent string
		marker string
		rest   string
	}{
		{"- item", true, "", "-", "item"},
		{"  * item", true, "  ", "*", "item"},
		{"\t+ item", true, "\t", "+", "item"},
		{"12. item", true, "", "12.", "item"},
		{"    3. ", true, "    ", "3.", ""},
		{"-item", false, "", "", ""},
		{"plain text", false, "", "", ""},
		{"", false, "", "", ""},
		{"1) item", false, "", "", ""},
	}
	for _, tt := range tests {
		ll, ok := ParseListLine(tt.line)
		if ok != tt.ok {
			t.Errorf("ParseListLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if ll.Indent != tt.indent || ll.Marker != tt.marker || ll.Rest != tt.rest {
			t.Errorf("ParseListLine(%q) = %+v", tt.line, ll)
		}
	}
}

func TestIndent_PlainLineInsertsAtCursor(t *testing.T) {
	e := Indent("hello", Caret(2))
	if e.Text != "he  llo" {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 4 {
		t.Errorf("cursor = %d, want 4", e.Cursor)
	}
	if !e.Changed {
		t.Error("expected change")
	}
}

func TestIndent_PlainLineReplacesSelection(t *testing.T) {
	e := Indent("hello world", Selection{Start: 5, End: 11})
	if e.Text != "hello  " {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 7 {
		t.Errorf("cursor = %d, want 7", e.Cursor)
	}
}

func TestIndent_EmptyText(t *testing.T) {
	e := Indent("", Caret(0))
	if e.Text != "  " || e.Cursor != 2 {
		t.Errorf("got %q cursor %d", e.Text, e.Cursor)
	}
}

func TestIndent_ListLine(t *testing.T) {
	e := Indent("- item", Caret(6))
	if e.Text != "  - item" {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 8 {
		t.Errorf("cursor = %d, want 8", e.Cursor)
	}
}

func TestIndent_ListLineCursorAnywhereOnLine(t *testing.T) {
	e := Indent("intro\n1. first", Caret(6))
	if e.Text != "intro\n  1. first" {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 8 {
		t.Errorf("cursor = %d, want 8", e.Cursor)
	}
}

func TestIndent_OnlyStartLineConsidered(t *testing.T) {
	// Selection spans into the plain second line; the list line wins.
	e := Indent("- a\nb", Selection{Start: 1, End: 5})
	if e.Text != "  - a\nb" {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 3 {
		t.Errorf("cursor = %d, want 3", e.Cursor)
	}
}

func TestIndentOutdent_RoundTrip(t *testing.T) {
	lines := []string{"# Title", "  * nested", "1. keep", "tail"}
	text := strings.Join(lines, "\n")
	// Cursor at the end of "  * nested".
	cursor := len("# Title\n  * nested")

	in := Indent(text, Caret(cursor))
	wantIndented := "# Title\n    * nested\n1. keep\ntail"
	if in.Text != wantIndented {
		t.Fatalf("indent text = %q", in.Text)
	}
	if in.Cursor != cursor+2 {
		t.Fatalf("indent cursor = %d, want %d", in.Cursor, cursor+2)
	}

	out := Outdent(in.Text, Caret(in.Cursor))
	if out.Text != text {
		t.Errorf("round trip text = %q, want %q", out.Text, text)
	}
	if out.Cursor != cursor {
		t.Errorf("round trip cursor = %d, want %d", out.Cursor, cursor)
	}
}

func TestOutdent_ListLine(t *testing.T) {
	e := Outdent("    - deep", Caret(10))
	if e.Text != "  - deep" || e.Cursor != 8 {
		t.Errorf("got %q cursor %d", e.Text, e.Cursor)
	}
}

func TestOutdent_PlainIndentedLine(t *testing.T) {
	e := Outdent("a\n    code", Caret(8))
	if e.Text != "a\n  code" {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 6 {
		t.Errorf("cursor = %d, want 6", e.Cursor)
	}
}

func TestOutdent_NoOps(t *testing.T) {
	tests := []struct {
		name string
		text string
		sel  Selection
	}{
		{"list without indent", "- a", Caret(3)},
		{"list with one space", " - a", Caret(4)},
		{"plain at margin", "text", Caret(0)},
		{"single space", " x", Caret(2)},
		{"empty", "", Caret(0)},
	}
	for _, tt := range tests {
		e := Outdent(tt.text, tt.sel)
		if e.Changed {
			t.Errorf("%s: expected no change, got %q", tt.name, e.Text)
		}
		if e.Text != tt.text || e.Cursor != tt.sel.Start {
			t.Errorf("%s: got %q cursor %d", tt.name, e.Text, e.Cursor)
		}
	}
}

func TestOutdent_CursorClampedToLineStart(t *testing.T) {
	// The cursor sits at the start of the list line; moving it back by two
	// would land on the previous line.
	e := Outdent("ab\n  - x", Caret(3))
	if e.Text != "ab\n- x" || !e.Changed {
		t.Fatalf("edit = %+v", e)
	}
	if e.Cursor != 3 {
		t.Errorf("cursor = %d, want 3", e.Cursor)
	}
}

func TestOutdent_CursorStaysOnLine(t *testing.T) {
	e := Outdent("x\n  y", Caret(2))
	if e.Text != "x\ny" {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", e.Cursor)
	}
}

func TestTab_Dispatch(t *testing.T) {
	if e := Tab("- a", Caret(0), false); e.Text != "  - a" {
		t.Errorf("tab = %q", e.Text)
	}
	if e := Tab("  - a", Caret(0), true); e.Text != "- a" {
		t.Errorf("shift-tab = %q", e.Text)
	}
}

func TestIndent_UTF16Offsets(t *testing.T) {
	// "日本\n" is three UTF-16 units; "- 項目" is four.
	e := Indent("日本\n- 項目", Caret(7))
	if e.Text != "日本\n  - 項目" {
		t.Errorf("text = %q", e.Text)
	}
	if e.Cursor != 9 {
		t.Errorf("cursor = %d, want 9", e.Cursor)
	}

	// An emoji is a surrogate pair: two units.
	e = Indent("😀x", Caret(2))
	if e.Text != "😀  x" || e.Cursor != 4 {
		t.Errorf("emoji: got %q cursor %d", e.Text, e.Cursor)
	}
}

func TestIndent_OutOfRangeSelectionClamps(t *testing.T) {
	e := Indent("ab", Selection{Start: 10, End: 99})
	if e.Text != "ab  " || e.Cursor != 4 {
		t.Errorf("got %q cursor %d", e.Text, e.Cursor)
	}
}

func TestLen16(t *testing.T) {
	tests := map[string]int{
		"":     0,
		"abc":  3,
		"日本語":  3,
		"😀":    2,
		"a😀b":  4,
		"é\nx": 3,
	}
	for s, want := range tests {
		if got := Len16(s); got != want {
			t.Errorf("Len16(%q) = %d, want %d", s, got, want)
		}
	}
}

func TestSelectionNormalize(t *testing.T) {
	s := Selection{Start: 5, End: -1}.Normalize("abc")
	if s.Start != 0 || s.End != 3 {
		t.Errorf("normalize = %+v", s)
	}
}
