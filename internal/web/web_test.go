package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesClient(t *testing.T) {
	h := Handler()

	tests := []struct {
		path string
		want string
	}{
		{"/", `id="input"`},
		{"/app.js", "EventSource"},
		{"/app.js", "selectionchange"},
		{"/app.css", ".markdown-body"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s = %d", tt.path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("%s missing %q", tt.path, tt.want)
		}
	}
}

func TestHandlerMissingFile(t *testing.T) {
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope.js", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing file = %d, want 404", w.Code)
	}
}
