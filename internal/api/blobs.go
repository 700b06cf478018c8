package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mdlive/internal/blob"
	"github.com/starford/mdlive/internal/checksum"
)

// BlobHandler serves dropped images by locator id.
type BlobHandler struct {
	store *blob.Store
}

// NewBlobHandler creates a handler over store.
func NewBlobHandler(store *blob.Store) *BlobHandler {
	return &BlobHandler{store: store}
}

// ServeBlob handles GET /blobs/{id}.
func (h *BlobHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	b, err := h.store.Get(blob.Locator(id))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("ETag", checksum.Tag(b.Checksum))
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(b.Data))
}
