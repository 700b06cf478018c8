// Package testutil provides shared test helpers for sessions and dropped images.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/mdlive/internal/session"
)

// PNG is the smallest payload that sniffs as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

// TestSession creates a session that renders previews synchronously and is
// closed when the test ends.
func TestSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()
	sess := session.New(append([]session.Option{session.WithDebounce(0)}, opts...)...)
	t.Cleanup(sess.Close)
	return sess
}

// WritePNG writes a PNG payload named name into dir.
func WritePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, PNG, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
