package debounce

import (
	"sync"
	"testing"
	"time"
)

// recorder collects values passed to a debounced function.
type recorder struct {
	mu   sync.Mutex
	vals []string
}

func (r *recorder) fn(v string) {
	r.mu.Lock()
	r.vals = append(r.vals, v)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.vals...)
}

// eventually polls fn every tick until it returns true or timeout elapses.
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

func TestBurstCoalescesToLastValue(t *testing.T) {
	var rec recorder
	d := New(50*time.Millisecond, rec.fn)
	defer d.Stop()

	d.Push("a")
	d.Push("ab")
	d.Push("abc")

	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		return len(rec.snapshot()) > 0
	}, "debounced call never happened")

	// Give a stray second call time to show up.
	time.Sleep(100 * time.Millisecond)
	got := rec.snapshot()
	if len(got) != 1 || got[0] != "abc" {
		t.Errorf("calls = %v, want [abc]", got)
	}
}

func TestPushResetsQuietPeriod(t *testing.T) {
	var rec recorder
	d := New(80*time.Millisecond, rec.fn)
	defer d.Stop()

	d.Push("x")
	time.Sleep(50 * time.Millisecond)
	d.Push("y")
	time.Sleep(50 * time.Millisecond)

	// 100ms since the first push but only 50ms since the last.
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}

	eventually(t, time.Second, 10*time.Millisecond, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == "y"
	}, "expected a single call with y")
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	var rec recorder
	d := New(30*time.Millisecond, rec.fn)
	defer d.Stop()

	d.Push("one")
	eventually(t, time.Second, 5*time.Millisecond, func() bool {
		return len(rec.snapshot()) == 1
	}, "first burst not delivered")

	d.Push("two")
	eventually(t, time.Second, 5*time.Millisecond, func() bool {
		return len(rec.snapshot()) == 2
	}, "second burst not delivered")

	if got := rec.snapshot(); got[0] != "one" || got[1] != "two" {
		t.Errorf("calls = %v", got)
	}
}

func TestFlushDeliversPendingNow(t *testing.T) {
	var rec recorder
	d := New(time.Hour, rec.fn)
	defer d.Stop()

	d.Push("now")
	d.Flush()
	if got := rec.snapshot(); len(got) != 1 || got[0] != "now" {
		t.Errorf("calls = %v, want [now]", got)
	}

	// Nothing pending: Flush is a no-op.
	d.Flush()
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("calls = %v", got)
	}
}

func TestStopDropsPending(t *testing.T) {
	var rec recorder
	d := New(30*time.Millisecond, rec.fn)
	d.Push("lost")
	d.Stop()
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("calls after stop = %v", got)
	}

	// Safe no-ops after stop.
	d.Push("ignored")
	d.Flush()
}

func TestZeroDelayIsSynchronous(t *testing.T) {
	var rec recorder
	d := New(0, rec.fn)
	defer d.Stop()

	d.Push("a")
	d.Push("b")
	if got := rec.snapshot(); len(got) != 2 || got[1] != "b" {
		t.Errorf("calls = %v", got)
	}
}
