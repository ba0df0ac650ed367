package core

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single deferred run of fn.
// At most one run is pending at a time: re-triggering cancels the pending
// timer and re-arms it, it does not queue additional runs. Runs of fn are
// serialized; a re-trigger that fires while fn is still executing waits for
// it to finish before running fn again.
type Debouncer struct {
	mutex    sync.Mutex // guards the fields below
	runMu    sync.Mutex // held for the duration of every fn run
	interval time.Duration
	fn       func()
	timer    *time.Timer
	pending  bool
	stopped  bool
}

func NewDebouncer(interval time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		interval: interval,
		fn:       fn,
	}
}

// Trigger arms the debounce timer, cancelling any pending run first.
func (d *Debouncer) Trigger() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.interval, d.run)
}

func (d *Debouncer) run() {
	d.mutex.Lock()
	if d.stopped || !d.pending {
		d.mutex.Unlock()
		return
	}
	d.pending = false
	d.mutex.Unlock()

	d.runMu.Lock()
	defer d.runMu.Unlock()

	// the Debouncer may have been stopped while waiting on an earlier run
	d.mutex.Lock()
	stopped := d.stopped
	d.mutex.Unlock()
	if stopped {
		return
	}
	d.fn()
}

// Flush runs fn immediately if a run is pending, waiting for any in-flight
// run to finish first.
func (d *Debouncer) Flush() {
	d.mutex.Lock()
	if !d.pending || d.stopped {
		d.mutex.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.mutex.Unlock()

	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.fn()
}

// Stop cancels any pending run and waits for an in-flight run to finish.
// The Debouncer cannot be re-armed afterwards.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mutex.Unlock()

	d.runMu.Lock()
	d.runMu.Unlock()
}

func (d *Debouncer) Pending() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.pending
}
