package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrStale       = errors.New("stale update")
	ErrTooLarge    = errors.New("too large")
	ErrUnsupported = errors.New("unsupported")
)
