// Package inbox turns image files written into a directory into drops on the
// document, so screenshots saved by other tools land at the cursor.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mdlive/internal/editor"
)

// DefaultSettle is how long a path must stay quiet before it is read.
const DefaultSettle = 200 * time.Millisecond

// DropFunc receives one file that settled in the inbox.
type DropFunc func(f editor.File)

// Option configures Watch.
type Option func(*watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *watcher) {
		w.settle = d
	}
}

// WithMaxBytes skips files larger than n bytes. n <= 0 disables the limit.
func WithMaxBytes(n int64) Option {
	return func(w *watcher) {
		w.maxBytes = n
	}
}

type watcher struct {
	dir      string
	settle   time.Duration
	maxBytes int64
	logger   *slog.Logger
	drop     DropFunc
}

// Watch watches dir until ctx is cancelled. Every regular file created or
// written there is read once it has been quiet for the settle period and,
// when it is a PNG image, handed to drop. Files already present when Watch
// starts are ignored, and nothing is ever deleted.
func Watch(ctx context.Context, dir string, logger *slog.Logger, drop DropFunc, opts ...Option) error {
	w := &watcher{
		dir:    dir,
		settle: DefaultSettle,
		logger: logger,
		drop:   drop,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("inbox: create %s: %w", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", dir, err)
	}

	logger.Info("inbox: started", slog.String("dir", dir))

	// pending maps a path to the time its quiet period ends. One timer is
	// armed for the earliest deadline.
	pending := make(map[string]time.Time)
	var timer *time.Timer
	var timerC <-chan time.Time

	arm := func() {
		if len(pending) == 0 {
			timerC = nil
			return
		}
		var next time.Time
		for _, due := range pending {
			if next.IsZero() || due.Before(next) {
				next = due
			}
		}
		d := time.Until(next)
		if d < 0 {
			d = 0
		}
		if timer == nil {
			timer = time.NewTimer(d)
		} else {
			timer.Reset(d)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("inbox: stopped")
			return nil

		case now := <-timerC:
			for path, due := range pending {
				if !due.After(now) {
					delete(pending, path)
					w.ingest(path)
				}
			}
			arm()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || skipName(filepath.Base(ev.Name)) {
				continue
			}
			pending[ev.Name] = time.Now().Add(w.settle)
			arm()

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: error", slog.String("error", watchErr.Error()))
		}
	}
}

// skipName rejects hidden files and editor or download temporaries.
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".tmp") ||
		strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".crdownload")
}

func (w *watcher) ingest(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Gone before it settled.
		w.logger.Debug("inbox: stat failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if !info.Mode().IsRegular() {
		return
	}
	if w.maxBytes > 0 && info.Size() > w.maxBytes {
		w.logger.Warn("inbox: file too large",
			slog.String("path", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max", w.maxBytes))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("inbox: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	f := editor.File{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	if !editor.Accepts(f) {
		w.logger.Debug("inbox: skipped", slog.String("path", path), slog.String("content_type", f.ContentType))
		return
	}
	w.logger.Debug("inbox: dropped", slog.String("path", path), slog.Int("bytes", len(data)))
	w.drop(f)
}
