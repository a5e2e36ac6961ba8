package state

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer coalesces rapid filter edits into one delayed fire.
//
// Each Change restarts the window. Submit fires at once and drops any
// pending fire. A generation counter discards a timer that already fired
// but lost the race with a newer Change, Submit or Stop.
type Debouncer struct {
	window    time.Duration
	fire      func(text string)
	afterFunc AfterFunc

	mu         sync.Mutex
	timer      Timer
	generation atomic.Uint64
	stopped    bool
}

// NewDebouncer creates a Debouncer that calls fire with the latest text.
func NewDebouncer(window time.Duration, fire func(text string)) *Debouncer {
	return &Debouncer{
		window:    window,
		fire:      fire,
		afterFunc: realAfterFunc,
	}
}

// SetAfterFunc replaces the scheduler. Tests use it to drive a fake clock.
func (d *Debouncer) SetAfterFunc(af AfterFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.afterFunc = af
}

// Window returns the debounce delay.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Change records new filter text and restarts the window.
func (d *Debouncer) Change(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	gen := d.generation.Add(1)
	d.timer = d.afterFunc(d.window, func() {
		d.fireIfCurrent(text, gen)
	})
}

// Submit fires immediately with text and cancels any pending fire.
func (d *Debouncer) Submit(text string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancelLocked()
	d.mu.Unlock()

	d.fire(text)
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending fire. Later calls are no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.cancelLocked()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation.Add(1)
}

func (d *Debouncer) fireIfCurrent(text string, gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.generation.Load() {
		// Stale timer - a newer edit or a submit won
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fire(text)
}
