package editor

// Surface is an editable text box that accepts whole-value replacements.
//
// Replace must call applied once the new value is live on the surface (for a
// browser this is after the value has been committed and rendered). Until
// then a selection set against the new text is unreliable.
type Surface interface {
	Replace(text string, applied func())
	Select(sel Selection)
}

// Apply commits e to s and moves the cursor only after s has accepted the
// new text. Unchanged edits are not committed.
func Apply(s Surface, e Edit) {
	if !e.Changed {
		return
	}
	cursor := Caret(e.Cursor)
	s.Replace(e.Text, func() {
		s.Select(cursor)
	})
}
