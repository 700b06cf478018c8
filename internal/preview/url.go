package preview

import (
	"slices"
	"strings"
)

// safeSchemes are the URL schemes allowed into href and src attributes.
var safeSchemes = []string{"http", "https", "mailto", "tel", "irc", "ircs", "xmpp", "blob"}

// safeURL returns raw when it is relative or uses an allowed scheme, and ""
// otherwise.
func safeURL(raw string) string {
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return raw
	}
	// A path, query or fragment delimiter before the colon means no scheme.
	if i := strings.IndexAny(raw, "/?#"); i >= 0 && i < colon {
		return raw
	}
	if slices.Contains(safeSchemes, strings.ToLower(raw[:colon])) {
		return raw
	}
	return ""
}
