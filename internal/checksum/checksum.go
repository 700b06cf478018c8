// Package checksum computes content digests used as HTTP entity tags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns a strong entity tag for data: the first 16 bytes of its
// digest, quoted.
func ETag(data []byte) string {
	return Tag(Sum(data))
}

// Tag formats a digest produced by Sum as an entity tag.
func Tag(sum string) string {
	if len(sum) > 32 {
		sum = sum[:32]
	}
	return `"` + sum + `"`
}

// Match reports whether an If-None-Match header value names tag.
func Match(header, tag string) bool {
	return header != "" && (header == tag || header == "*")
}
