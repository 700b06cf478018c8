package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/starford/mdlive/internal/apperr"
	"github.com/starford/mdlive/internal/editor"
	"github.com/starford/mdlive/internal/session"
)

// DefaultMaxDropBytes bounds a whole drop request.
const DefaultMaxDropBytes = 50 << 20

// DropHandler accepts files dropped onto the input pane.
type DropHandler struct {
	sess     *session.Session
	maxBytes int64
}

// NewDropHandler creates a handler that rejects requests over maxBytes.
func NewDropHandler(sess *session.Session, maxBytes int64) *DropHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDropBytes
	}
	return &DropHandler{sess: sess, maxBytes: maxBytes}
}

// Drop handles POST /api/document/drop (multipart/form-data).
// Fields: seq, text, start, end, and one "files" part per dropped file.
//
//	@Summary		Drop files at the cursor
//	@Tags			document
//	@Accept			multipart/form-data
//	@Produce		json
//	@Success		200		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document/drop [post]
func (h *DropHandler) Drop(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		if isTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	seq, err := formUint(r, "seq")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	start, err := formInt(r, "start")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	end, err := formInt(r, "end")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	files, err := readFiles(r.MultipartForm.File["files"])
	if err != nil {
		writeError(w, "read dropped files", err)
		return
	}

	sel := editor.Selection{Start: start, End: end}
	res, err := h.sess.Drop(seq, r.FormValue("text"), sel, files)
	if err != nil {
		writeError(w, "drop", err)
		return
	}
	writeJSON(w, http.StatusOK, editResponse(res))
}

func readFiles(headers []*multipart.FileHeader) ([]editor.File, error) {
	files := make([]editor.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, editor.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func formUint(r *http.Request, key string) (uint64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func formInt(r *http.Request, key string) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || errors.Is(err, apperr.ErrTooLarge) || errors.Is(err, multipart.ErrMessageTooLarge)
}
