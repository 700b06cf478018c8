// Package session owns the single document edited by a running mdlive
// process.
//
// A Session keeps the document text, the last known selection, the dropped
// image store, and the debounced preview. Every change is processed to
// completion under one mutex, so two edits never interleave.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/mdlive/internal/apperr"
	"github.com/starford/mdlive/internal/blob"
	"github.com/starford/mdlive/internal/debounce"
	"github.com/starford/mdlive/internal/editor"
	"github.com/starford/mdlive/internal/frontmatter"
	"github.com/starford/mdlive/internal/preview"
	"github.com/starford/mdlive/internal/sse"
)

// DefaultDebounce is the quiet period before the preview is re-rendered.
const DefaultDebounce = 300 * time.Millisecond

// Publisher receives change notifications. *sse.Broker satisfies it.
type Publisher interface {
	Publish(event sse.Event)
	PublishDocumentEvent(revision uint64, length int)
}

// Document is a point-in-time copy of the session state.
type Document struct {
	Text      string
	Revision  uint64
	Selection editor.Selection
}

// Preview is a rendered revision of the document.
type Preview struct {
	Revision uint64 `json:"revision"`
	Title    string `json:"title"`
	HTML     string `json:"html"`
}

// Result reports the edit computed for a request and the state after it was
// committed.
type Result struct {
	Edit     editor.Edit
	Document Document
}

// Session is the editor container. It is safe for concurrent use.
type Session struct {
	renderer *preview.Renderer
	blobs    *blob.Store
	pub      Publisher
	logger   *slog.Logger
	delay    time.Duration

	mu       sync.Mutex
	text     string
	revision uint64
	lastSeq  uint64
	sel      editor.Selection
	closed   bool

	previews *debounce.Debouncer[Document]

	previewMu   sync.RWMutex
	lastPreview Preview
}

// Option configures a Session.
type Option func(*Session)

// WithRenderer sets the preview renderer.
func WithRenderer(r *preview.Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithBlobStore sets the store dropped images are kept in.
func WithBlobStore(b *blob.Store) Option {
	return func(s *Session) {
		s.blobs = b
	}
}

// WithPublisher sets where change events are sent.
func WithPublisher(p Publisher) Option {
	return func(s *Session) {
		s.pub = p
	}
}

// WithDebounce sets the preview quiet period. d <= 0 renders on every change.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		s.delay = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithText seeds the document.
func WithText(text string) Option {
	return func(s *Session) {
		s.text = text
		s.sel = editor.Caret(editor.Len16(text))
	}
}

// New creates a session.
func New(opts ...Option) *Session {
	s := &Session{
		delay: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.blobs == nil {
		s.blobs = blob.NewStore()
	}
	if s.renderer == nil {
		s.renderer = preview.New(preview.WithLocatorURL(blob.URL))
	}
	if s.pub == nil {
		s.pub = nopPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.previews = debounce.New(s.delay, s.renderPreview)
	return s
}

// Blobs returns the session's image store.
func (s *Session) Blobs() *blob.Store {
	return s.blobs
}

// Snapshot returns the current document.
func (s *Session) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetText replaces the document wholesale, as typing does. seq orders
// requests from one client: a seq at or below the last accepted one is
// rejected with apperr.ErrStale. seq 0 is never stale.
func (s *Session) SetText(seq uint64, text string, sel editor.Selection) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acceptLocked(seq); err != nil {
		return Document{}, err
	}
	s.adoptLocked(text, sel)
	return s.snapshotLocked(), nil
}

// Tab applies list-aware indentation to the client's current text.
func (s *Session) Tab(seq uint64, text string, sel editor.Selection, shift bool) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acceptLocked(seq); err != nil {
		return Result{}, err
	}
	return s.editLocked(text, sel, editor.Tab(text, sel, shift)), nil
}

// Drop ingests dropped files into the client's current text.
func (s *Session) Drop(seq uint64, text string, sel editor.Selection, files []editor.File) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acceptLocked(seq); err != nil {
		return Result{}, err
	}
	return s.editLocked(text, sel, editor.Drop(text, sel, files, s.locate)), nil
}

// DropAtCursor ingests files that did not come from a browser, placing them
// at the last known selection.
func (s *Session) DropAtCursor(files []editor.File) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editLocked(s.text, s.sel, editor.Drop(s.text, s.sel, files, s.locate))
}

// TabAtCursor indents or outdents at sel against the current text.
func (s *Session) TabAtCursor(sel editor.Selection, shift bool) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editLocked(s.text, sel, editor.Tab(s.text, sel, shift))
}

// Preview renders the current document now. A rendering of the same
// revision produced by the debouncer is reused.
func (s *Session) Preview() (Preview, error) {
	doc := s.Snapshot()

	s.previewMu.RLock()
	cached := s.lastPreview
	s.previewMu.RUnlock()
	if cached.Revision == doc.Revision && cached.HTML != "" {
		return cached, nil
	}

	out, err := s.renderer.RenderHTML(doc.Text)
	if err != nil {
		return Preview{}, fmt.Errorf("render revision %d: %w", doc.Revision, err)
	}
	p := Preview{Revision: doc.Revision, Title: frontmatter.Title(doc.Text), HTML: out}
	s.storePreview(p)
	return p, nil
}

// Render renders arbitrary text with the session's renderer without touching
// the document.
func (s *Session) Render(text string) (string, error) {
	return s.renderer.RenderHTML(text)
}

// Sweep revokes dropped images the document no longer references.
func (s *Session) Sweep() int {
	s.mu.Lock()
	text := s.text
	s.mu.Unlock()
	return s.blobs.Retain(text)
}

// Janitor sweeps unreferenced images every interval until ctx is done.
func (s *Session) Janitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("janitor: revoked blobs", slog.Int("count", n))
			}
		}
	}
}

// FlushPreview renders any pending preview immediately.
func (s *Session) FlushPreview() {
	s.previews.Flush()
}

// Close stops preview rendering and revokes every dropped image.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.previews.Stop()
	if n := s.blobs.RevokeAll(); n > 0 {
		s.logger.Debug("session: revoked blobs", slog.Int("count", n))
	}
}

func (s *Session) acceptLocked(seq uint64) error {
	if seq == 0 {
		return nil
	}
	if seq <= s.lastSeq {
		return fmt.Errorf("seq %d after %d: %w", seq, s.lastSeq, apperr.ErrStale)
	}
	s.lastSeq = seq
	return nil
}

// editLocked commits e, computed against base. When e changes nothing the
// client's base text and selection are still adopted.
func (s *Session) editLocked(base string, sel editor.Selection, e editor.Edit) Result {
	if e.Changed {
		editor.Apply(surface{s}, e)
	} else {
		s.adoptLocked(base, sel)
	}
	return Result{Edit: e, Document: s.snapshotLocked()}
}

func (s *Session) adoptLocked(text string, sel editor.Selection) {
	sf := surface{s}
	sel = sel.Normalize(text)
	if text == s.text {
		if sel != s.sel {
			sf.Select(sel)
		}
		return
	}
	sf.Replace(text, func() {
		sf.Select(sel)
	})
}

func (s *Session) snapshotLocked() Document {
	return Document{Text: s.text, Revision: s.revision, Selection: s.sel}
}

func (s *Session) locate(f editor.File) (string, error) {
	return s.blobs.Create(f)
}

func (s *Session) renderPreview(doc Document) {
	out, err := s.renderer.RenderHTML(doc.Text)
	if err != nil {
		s.logger.Error("preview render failed",
			slog.Uint64("revision", doc.Revision),
			slog.String("error", err.Error()))
		return
	}
	p := Preview{Revision: doc.Revision, Title: frontmatter.Title(doc.Text), HTML: out}
	s.storePreview(p)
	s.pub.Publish(sse.Event{Type: sse.TypePreviewUpdated, Data: p})
}

// storePreview keeps p unless a newer revision is already stored.
func (s *Session) storePreview(p Preview) {
	s.previewMu.Lock()
	defer s.previewMu.Unlock()
	if p.Revision >= s.lastPreview.Revision {
		s.lastPreview = p
	}
}

// surface commits edits to the session. It must only be used with s.mu held.
type surface struct {
	s *Session
}

// Replace stores the new text. The value is live as soon as it is stored, so
// applied runs before Replace returns.
func (sf surface) Replace(text string, applied func()) {
	s := sf.s
	s.text = text
	s.revision++
	s.pub.PublishDocumentEvent(s.revision, editor.Len16(text))
	s.previews.Push(Document{Text: text, Revision: s.revision})
	applied()
}

func (sf surface) Select(sel editor.Selection) {
	s := sf.s
	s.sel = sel
	s.pub.Publish(sse.Event{Type: sse.TypeSelectionUpdated, Data: selectionData{
		Revision: s.revision,
		Start:    sel.Start,
		End:      sel.End,
	}})
}

type selectionData struct {
	Revision uint64 `json:"revision"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event)                 {}
func (nopPublisher) PublishDocumentEvent(uint64, int) {}
