package api

import (
	"net/http"

	"github.com/starford/mdlive/internal/checksum"
	"github.com/starford/mdlive/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	sess *session.Session
}

// NewHandler creates a new Handler.
func NewHandler(sess *session.Session) *Handler {
	return &Handler{sess: sess}
}

// GetDocument handles GET /api/document.
//
//	@Summary		Get the current document
//	@Tags			document
//	@Produce		json
//	@Param			If-None-Match	header	string	false	"ETag of a cached copy"
//	@Success		200		{object}	DocumentResponse
//	@Success		304		"Not modified"
//	@Security		BearerAuth
//	@Router			/document [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc := h.sess.Snapshot()
	tag := checksum.ETag([]byte(doc.Text))
	w.Header().Set("ETag", tag)
	if checksum.Match(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

// PutDocument handles PUT /api/document.
//
//	@Summary		Replace the document text
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UpdateDocumentRequest	true	"New text"
//	@Success		200		{object}	DocumentResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document [put]
func (h *Handler) PutDocument(w http.ResponseWriter, r *http.Request) {
	var req UpdateDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	doc, err := h.sess.SetText(req.Seq, req.Text, req.Selection)
	if err != nil {
		writeError(w, "update document", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag([]byte(doc.Text)))
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

// Tab handles POST /api/document/tab.
//
//	@Summary		Indent or outdent at the cursor
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TabRequest	true	"Current text and selection"
//	@Success		200		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/tab [post]
func (h *Handler) Tab(w http.ResponseWriter, r *http.Request) {
	var req TabRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	res, err := h.sess.Tab(req.Seq, req.Text, req.Selection, req.Shift)
	if err != nil {
		writeError(w, "tab", err)
		return
	}
	writeJSON(w, http.StatusOK, editResponse(res))
}

// GetPreview handles GET /api/preview.
//
//	@Summary		Render the current document
//	@Tags			preview
//	@Produce		json
//	@Success		200		{object}	PreviewResponse
//	@Security		BearerAuth
//	@Router			/preview [get]
func (h *Handler) GetPreview(w http.ResponseWriter, _ *http.Request) {
	p, err := h.sess.Preview()
	if err != nil {
		writeError(w, "preview", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Render handles POST /api/render.
//
//	@Summary		Render arbitrary Markdown without touching the document
//	@Tags			preview
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Markdown"
//	@Success		200		{object}	RenderResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	out, err := h.sess.Render(req.Text)
	if err != nil {
		writeError(w, "render", err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{HTML: out})
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if isTooLarge(err) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request too large"))
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
}
