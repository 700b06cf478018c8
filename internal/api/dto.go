package api

import (
	"github.com/starford/mdlive/internal/editor"
	"github.com/starford/mdlive/internal/session"
)

// DocumentResponse is the current document.
type DocumentResponse struct {
	Text      string           `json:"text" example:"# Hello"`
	Revision  uint64           `json:"revision" example:"12"`
	Selection editor.Selection `json:"selection"`
}

func documentResponse(d session.Document) DocumentResponse {
	return DocumentResponse{Text: d.Text, Revision: d.Revision, Selection: d.Selection}
}

// UpdateDocumentRequest replaces the document text. Seq orders the requests
// of one client; zero disables the stale check.
type UpdateDocumentRequest struct {
	Seq       uint64           `json:"seq" example:"7"`
	Text      string           `json:"text" example:"# Hello\nWorld"`
	Selection editor.Selection `json:"selection"`
}

// TabRequest asks for list-aware indentation of the client's current text.
type TabRequest struct {
	Seq       uint64           `json:"seq" example:"8"`
	Text      string           `json:"text" example:"- item"`
	Selection editor.Selection `json:"selection"`
	Shift     bool             `json:"shift"`
}

// EditResponse is the edit the client applies to its text box: set the value
// to Text, then place the cursor at Cursor.
type EditResponse struct {
	Text     string `json:"text"`
	Cursor   int    `json:"cursor" example:"5"`
	Changed  bool   `json:"changed"`
	Revision uint64 `json:"revision" example:"13"`
}

func editResponse(res session.Result) EditResponse {
	return EditResponse{
		Text:     res.Document.Text,
		Cursor:   res.Edit.Cursor,
		Changed:  res.Edit.Changed,
		Revision: res.Document.Revision,
	}
}

// RenderRequest is a stateless render of arbitrary text.
type RenderRequest struct {
	Text string `json:"text" example:"**bold**"`
}

// RenderResponse carries rendered HTML.
type RenderResponse struct {
	HTML string `json:"html"`
}

// PreviewResponse is the rendered current document.
type PreviewResponse = session.Preview
