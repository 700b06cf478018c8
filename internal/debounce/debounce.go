// Package debounce coalesces bursts of values into a single delayed call.
package debounce

import (
	"sync/atomic"
	"time"
)

// Debouncer calls fn with the most recent pushed value once no new value has
// arrived for the configured delay. Intermediate values are dropped.
//
// A single goroutine owns the timer and the pending value; fn runs on that
// goroutine, so fn must not call Push or Flush on the same Debouncer.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	pushCh  chan T
	flushCh chan chan struct{}

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// New starts a debouncer. A delay <= 0 makes Push call fn synchronously.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	d := &Debouncer[T]{
		delay:   delay,
		fn:      fn,
		pushCh:  make(chan T),
		flushCh: make(chan chan struct{}),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if delay <= 0 {
		close(d.stopped)
		return d
	}
	go d.run()
	return d
}

func (d *Debouncer[T]) run() {
	defer close(d.stopped)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending T
		has     bool
	)

	fire := func() {
		timerC = nil
		if !has {
			return
		}
		v := pending
		var zero T
		pending, has = zero, false
		d.fn(v)
	}

	for {
		select {
		case <-d.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case v := <-d.pushCh:
			pending, has = v, true
			if timer == nil {
				timer = time.NewTimer(d.delay)
			} else {
				timer.Reset(d.delay)
			}
			timerC = timer.C

		case <-timerC:
			fire()

		case done := <-d.flushCh:
			if timer != nil {
				timer.Stop()
			}
			fire()
			close(done)
		}
	}
}

// Push replaces the pending value and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	if d.closed.Load() {
		return
	}
	if d.delay <= 0 {
		d.fn(v)
		return
	}
	select {
	case d.pushCh <- v:
	case <-d.stopped:
	}
}

// Flush calls fn with the pending value now, if there is one, and waits for
// it to return.
func (d *Debouncer[T]) Flush() {
	if d.closed.Load() || d.delay <= 0 {
		return
	}
	done := make(chan struct{})
	select {
	case d.flushCh <- done:
	case <-d.stopped:
		return
	}
	select {
	case <-done:
	case <-d.stopped:
	}
}

// Stop discards any pending value and ends the loop. It is safe to call more
// than once.
func (d *Debouncer[T]) Stop() {
	if d.closed.CompareAndSwap(false, true) {
		close(d.stopCh)
	}
	<-d.stopped
}
