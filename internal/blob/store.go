// Package blob keeps dropped image bytes in memory behind short-lived
// session-local locators of the form "blob:<uuid>".
package blob

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/mdlive/internal/apperr"
	"github.com/starford/mdlive/internal/checksum"
	"github.com/starford/mdlive/internal/editor"
)

// Scheme prefixes every locator handed out by a Store.
const Scheme = "blob:"

// Blob is one stored file.
type Blob struct {
	Locator     string
	Name        string
	ContentType string
	Data        []byte
	Checksum    string
	CreatedAt   time.Time

	seq      uint64
	lastSeen time.Time
}

// Store is an in-memory locator table. It is safe for concurrent use.
type Store struct {
	maxBytes int64
	grace    time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	blobs map[string]*Blob
	seq   uint64
}

// Option configures a Store.
type Option func(*Store)

// WithMaxBytes rejects files larger than n bytes. n <= 0 disables the limit.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// WithGrace keeps an unreferenced blob alive for d before Retain revokes it.
func WithGrace(d time.Duration) Option {
	return func(s *Store) {
		s.grace = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		blobs: make(map[string]*Blob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores f and returns its locator.
func (s *Store) Create(f editor.File) (string, error) {
	if s.maxBytes > 0 && int64(len(f.Data)) > s.maxBytes {
		return "", fmt.Errorf("blob: %s is %d bytes (max %d): %w", f.Name, len(f.Data), s.maxBytes, apperr.ErrTooLarge)
	}

	now := s.now()
	b := &Blob{
		Locator:     Scheme + uuid.New().String(),
		Name:        f.Name,
		ContentType: f.ContentType,
		Data:        f.Data,
		Checksum:    checksum.Sum(f.Data),
		CreatedAt:   now,
		lastSeen:    now,
	}

	s.mu.Lock()
	s.seq++
	b.seq = s.seq
	s.blobs[b.Locator] = b
	s.mu.Unlock()
	return b.Locator, nil
}

// Get returns the blob behind locator.
func (s *Store) Get(locator string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[locator]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return b, nil
}

// Revoke releases locator. Unknown locators are ignored.
func (s *Store) Revoke(locator string) {
	s.mu.Lock()
	delete(s.blobs, locator)
	s.mu.Unlock()
}

// RevokeAll releases every locator.
func (s *Store) RevokeAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.blobs)
	s.blobs = make(map[string]*Blob)
	return n
}

// Retain revokes every locator that text no longer references and that has
// been unreferenced for longer than the grace period. It returns the number
// of revoked locators.
func (s *Store) Retain(text string) int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for loc, b := range s.blobs {
		if strings.Contains(text, loc) {
			b.lastSeen = now
			continue
		}
		if now.Sub(b.lastSeen) > s.grace {
			delete(s.blobs, loc)
			revoked++
		}
	}
	return revoked
}

// Locators lists live locators in creation order.
func (s *Store) Locators() []string {
	s.mu.RLock()
	out := make([]*Blob, 0, len(s.blobs))
	for _, b := range s.blobs {
		out = append(out, b)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	locs := make([]string, len(out))
	for i, b := range out {
		locs[i] = b.Locator
	}
	return locs
}

// Len returns the number of live locators.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// ID returns the part of a locator after the scheme, or "" for foreign values.
func ID(locator string) string {
	if !strings.HasPrefix(locator, Scheme) {
		return ""
	}
	return strings.TrimPrefix(locator, Scheme)
}

// Locator is the inverse of ID.
func Locator(id string) string {
	return Scheme + id
}

// URLPath is where the HTTP layer serves blobs.
const URLPath = "/blobs/"

// URL maps a locator to its browser-fetchable path. Values that are not
// locators are returned unchanged.
func URL(locator string) string {
	id := ID(locator)
	if id == "" {
		return locator
	}
	return URLPath + id
}
