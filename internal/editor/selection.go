// Package editor implements the text logic behind the input pane: list-aware
// Tab/Shift-Tab indentation, image drop ingestion and the ordering contract
// for committing an edit to a text surface.
//
// Offsets are UTF-16 code units, the unit browser text boxes report through
// selectionStart/selectionEnd. They are mapped to byte offsets internally.
package editor

import (
	"unicode/utf16"
	"unicode/utf8"
)

// Selection is a range of UTF-16 offsets into the document text.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Caret returns a collapsed selection at off.
func Caret(off int) Selection {
	return Selection{Start: off, End: off}
}

// Collapsed reports whether the selection is a bare cursor.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Normalize clamps both ends into text and orders them.
func (s Selection) Normalize(text string) Selection {
	n := Len16(text)
	s.Start = clamp(s.Start, 0, n)
	s.End = clamp(s.End, 0, n)
	if s.End < s.Start {
		s.Start, s.End = s.End, s.Start
	}
	return s
}

// Edit is the result of an editing operation: the complete new text and the
// cursor to place once the surface shows it.
type Edit struct {
	Text    string `json:"text"`
	Cursor  int    `json:"cursor"`
	Changed bool   `json:"changed"`
}

// unchanged returns a no-op edit that keeps the cursor at sel.Start.
func unchanged(text string, sel Selection) Edit {
	return Edit{Text: text, Cursor: sel.Start}
}

// Len16 returns the length of s in UTF-16 code units.
func Len16(s string) int {
	n := 0
	for _, r := range s {
		n += runeLen16(r)
	}
	return n
}

// byteOffset maps a UTF-16 offset to a byte offset in s. An offset that falls
// inside a surrogate pair snaps to the start of that rune; offsets past the end
// clamp to len(s).
func byteOffset(s string, off int) int {
	if off <= 0 {
		return 0
	}
	units := 0
	for i, r := range s {
		n := runeLen16(r)
		if units+n > off {
			return i
		}
		units += n
	}
	return len(s)
}

func runeLen16(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
