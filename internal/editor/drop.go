package editor

import (
	"regexp"
	"strings"
)

// File is one dropped file payload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Locator turns a dropped file into a short-lived resource locator.
type Locator func(File) (string, error)

var extRe = regexp.MustCompile(`\.[^/.]+$`)

// Accepts reports whether a dropped file is ingested. Only PNG images are.
func Accepts(f File) bool {
	ct := strings.ToLower(f.ContentType)
	return strings.HasPrefix(ct, "image/") && strings.Contains(ct, "png")
}

// Label derives the image alt text from a file name by stripping its
// extension.
func Label(name string) string {
	return extRe.ReplaceAllString(name, "")
}

// ImageMarkdown formats an embedded image reference.
func ImageMarkdown(label, locator string) string {
	return "![" + label + "](" + locator + ")"
}

// InsertAtCursor replaces the selection with fragment and places the cursor
// right after it.
func InsertAtCursor(text string, sel Selection, fragment string) Edit {
	sel = sel.Normalize(text)
	start := byteOffset(text, sel.Start)
	end := byteOffset(text, sel.End)
	return Edit{
		Text:    text[:start] + fragment + text[end:],
		Cursor:  Len16(text[:start]) + Len16(fragment),
		Changed: true,
	}
}

// Drop ingests dropped files into text. Files that are not PNG images, or
// for which no locator can be created, are skipped without an error. The
// first accepted file is spliced in at the selection; every later one is
// appended to the end of the text on its own line.
func Drop(text string, sel Selection, files []File, locate Locator) Edit {
	out := unchanged(text, sel.Normalize(text))
	for _, f := range files {
		if !Accepts(f) {
			continue
		}
		loc, err := locate(f)
		if err != nil || loc == "" {
			continue
		}
		fragment := ImageMarkdown(Label(f.Name), loc)
		if !out.Changed {
			out = InsertAtCursor(text, sel, fragment)
			continue
		}
		out.Text += "\n" + fragment
	}
	return out
}
