package internal

import (
	"fmt"
	"io"
	"os"
)

// RenderFile renders a Markdown file through the preview pipeline and writes
// the HTML to w.
func RenderFile(cfg *Config, path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	out, err := newRenderer(cfg).RenderHTML(string(data))
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
