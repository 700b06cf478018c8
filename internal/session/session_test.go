package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/mdlive/internal/apperr"
	"github.com/starford/mdlive/internal/blob"
	"github.com/starford/mdlive/internal/editor"
	"github.com/starford/mdlive/internal/sse"
)

// recordingPublisher keeps every published event type in order.
type recordingPublisher struct {
	mu       sync.Mutex
	types    []string
	previews []Preview
}

func (p *recordingPublisher) Publish(e sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.Type)
	if pv, ok := e.Data.(Preview); ok {
		p.previews = append(p.previews, pv)
	}
}

func (p *recordingPublisher) PublishDocumentEvent(uint64, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, sse.TypeDocumentUpdated)
}

func (p *recordingPublisher) snapshot() ([]string, []Preview) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...), append([]Preview(nil), p.previews...)
}

func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
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

func png(name string) editor.File {
	return editor.File{Name: name, ContentType: "image/png", Data: []byte("\x89PNG" + name)}
}

func newSession(t *testing.T, opts ...Option) (*Session, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	s := New(append([]Option{WithPublisher(pub)}, opts...)...)
	t.Cleanup(s.Close)
	return s, pub
}

func TestSetText(t *testing.T) {
	s, pub := newSession(t, WithDebounce(0))

	doc, err := s.SetText(1, "hello", editor.Caret(5))
	if err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if doc.Text != "hello" || doc.Revision != 1 || doc.Selection != editor.Caret(5) {
		t.Errorf("doc = %+v", doc)
	}

	types, previews := pub.snapshot()
	if len(previews) != 1 || !strings.Contains(previews[0].HTML, "hello") {
		t.Errorf("previews = %+v", previews)
	}
	// The document change is announced before the new selection.
	di, si := indexOf(types, sse.TypeDocumentUpdated), indexOf(types, sse.TypeSelectionUpdated)
	if di < 0 || si < 0 || di > si {
		t.Errorf("event order = %v", types)
	}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func TestSetText_StaleSeqRejected(t *testing.T) {
	s, _ := newSession(t, WithDebounce(0))

	if _, err := s.SetText(5, "new", editor.Caret(3)); err != nil {
		t.Fatal(err)
	}
	_, err := s.SetText(4, "old", editor.Caret(3))
	if !errors.Is(err, apperr.ErrStale) {
		t.Fatalf("err = %v, want ErrStale", err)
	}
	if got := s.Snapshot().Text; got != "new" {
		t.Errorf("text = %q, stale write applied", got)
	}

	// seq 0 is never stale.
	if _, err := s.SetText(0, "server", editor.Caret(0)); err != nil {
		t.Errorf("seq 0: %v", err)
	}
}

func TestSetText_SameTextOnlyMovesSelection(t *testing.T) {
	s, _ := newSession(t, WithDebounce(0), WithText("abc"))

	doc, err := s.SetText(1, "abc", editor.Caret(1))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Revision != 0 {
		t.Errorf("revision = %d, unchanged text must not bump it", doc.Revision)
	}
	if doc.Selection != editor.Caret(1) {
		t.Errorf("selection = %+v", doc.Selection)
	}
}

func TestTab_IndentsListLine(t *testing.T) {
	s, _ := newSession(t, WithDebounce(0))

	res, err := s.Tab(1, "- item", editor.Caret(3), false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Edit.Text != "  - item" || res.Edit.Cursor != 5 {
		t.Errorf("edit = %+v", res.Edit)
	}
	if res.Document.Text != "  - item" || res.Document.Selection != editor.Caret(5) {
		t.Errorf("document = %+v", res.Document)
	}
}

func TestTab_NoOpAdoptsClientText(t *testing.T) {
	s, _ := newSession(t, WithDebounce(0))

	res, err := s.Tab(1, "plain", editor.Caret(2), true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Edit.Changed {
		t.Errorf("outdent of plain line changed it: %+v", res.Edit)
	}
	if res.Document.Text != "plain" {
		t.Errorf("client text not adopted: %+v", res.Document)
	}
}

func TestDrop_ResolvesInPreview(t *testing.T) {
	s, _ := newSession(t, WithDebounce(0))

	res, err := s.Drop(1, "intro ", editor.Caret(6), []editor.File{png("shot.png")})
	if err != nil {
		t.Fatal(err)
	}
	locs := s.Blobs().Locators()
	if len(locs) != 1 {
		t.Fatalf("locators = %v", locs)
	}
	want := "intro ![shot](" + locs[0] + ")"
	if res.Document.Text != want {
		t.Errorf("text = %q, want %q", res.Document.Text, want)
	}

	p, err := s.Preview()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.HTML, `src="`+blob.URL(locs[0])+`"`) {
		t.Errorf("preview does not reference blob URL: %s", p.HTML)
	}
}

func TestDropAtCursor_UsesLastSelection(t *testing.T) {
	s, _ := newSession(t, WithDebounce(0))

	if _, err := s.SetText(1, "ab", editor.Caret(1)); err != nil {
		t.Fatal(err)
	}
	res := s.DropAtCursor([]editor.File{png("x.png")})
	if !strings.HasPrefix(res.Document.Text, "a![x](blob:") || !strings.HasSuffix(res.Document.Text, ")b") {
		t.Errorf("text = %q", res.Document.Text)
	}

	// Non-PNG files leave the document alone.
	before := s.Snapshot()
	res = s.DropAtCursor([]editor.File{{Name: "a.jpg", ContentType: "image/jpeg"}})
	if res.Edit.Changed || res.Document.Revision != before.Revision {
		t.Errorf("jpeg drop changed document: %+v", res)
	}
}

func TestPreview_DebouncedBurst(t *testing.T) {
	s, pub := newSession(t, WithDebounce(40*time.Millisecond))

	for i, text := range []string{"a", "ab", "abc"} {
		if _, err := s.SetText(uint64(i+1), text, editor.Caret(len(text))); err != nil {
			t.Fatal(err)
		}
	}

	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		_, previews := pub.snapshot()
		return len(previews) > 0
	}, "no preview published")

	time.Sleep(80 * time.Millisecond)
	_, previews := pub.snapshot()
	if len(previews) != 1 {
		t.Fatalf("previews = %d, want 1", len(previews))
	}
	if previews[0].Revision != 3 || !strings.Contains(previews[0].HTML, "abc") {
		t.Errorf("preview = %+v", previews[0])
	}
}

func TestPreview_ConvergesOnFlush(t *testing.T) {
	s, pub := newSession(t, WithDebounce(time.Hour))

	if _, err := s.SetText(1, "# Title", editor.Caret(7)); err != nil {
		t.Fatal(err)
	}
	s.FlushPreview()

	_, previews := pub.snapshot()
	if len(previews) != 1 || !strings.Contains(previews[0].HTML, "<h1") {
		t.Errorf("previews = %+v", previews)
	}
	if previews[0].Title != "Title" {
		t.Errorf("title = %q", previews[0].Title)
	}
}

func TestPreview_EmptyShowsPlaceholder(t *testing.T) {
	s, _ := newSession(t)

	p, err := s.Preview()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p.HTML, "placeholder") {
		t.Errorf("html = %s", p.HTML)
	}
}

func TestSweep_RevokesUnreferenced(t *testing.T) {
	clock := time.Unix(0, 0)
	store := blob.NewStore(blob.WithGrace(time.Second), blob.WithClock(func() time.Time {
		clock = clock.Add(2 * time.Second)
		return clock
	}))
	s, _ := newSession(t, WithDebounce(0), WithBlobStore(store))

	res, err := s.Drop(1, "", editor.Caret(0), []editor.File{png("a.png")})
	if err != nil {
		t.Fatal(err)
	}
	if n := s.Sweep(); n != 0 {
		t.Errorf("referenced blob revoked: %d", n)
	}

	if _, err := s.SetText(2, "gone", editor.Caret(4)); err != nil {
		t.Fatal(err)
	}
	if n := s.Sweep(); n != 1 {
		t.Errorf("swept = %d, want 1 (text was %q)", n, res.Document.Text)
	}
}

func TestJanitor_StopsWithContext(t *testing.T) {
	s, _ := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Janitor(ctx, 5*time.Millisecond) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Janitor: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestClose_RevokesBlobs(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(WithPublisher(pub), WithDebounce(0))

	s.DropAtCursor([]editor.File{png("a.png"), png("b.png")})
	if s.Blobs().Len() != 2 {
		t.Fatalf("blobs = %d", s.Blobs().Len())
	}
	s.Close()
	s.Close()
	if s.Blobs().Len() != 0 {
		t.Errorf("blobs after close = %d", s.Blobs().Len())
	}
}

func TestConcurrentEditsAreSerialized(t *testing.T) {
	s, _ := newSession(t, WithDebounce(time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cur := s.Snapshot()
			s.TabAtCursor(cur.Selection, false)
		}()
	}
	wg.Wait()

	if got := s.Snapshot(); got.Revision != 20 || len(got.Text) != 40 {
		t.Errorf("doc = %+v, want 20 indents", got)
	}
}
