package internal

import (
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// newLogger builds the process logger: JSON lines by default, or
// human-readable text for interactive use.
func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	if cfg.LogFormat == LogFormatText {
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Level:           charmlog.Level(cfg.LogLevel),
			Prefix:          "mdlive",
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}
