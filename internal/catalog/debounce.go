package catalog

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated triggers into one delayed invocation.
// It is a single-slot timer: each Trigger cancels any pending invocation and
// re-arms the slot, so at most one invocation is ever pending. A zero or
// negative window runs the function synchronously.
type Debouncer struct {
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer firing window after the last trigger.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger schedules fn to run once the window elapses with no further
// triggers. A pending invocation is superseded, never run twice.
func (d *Debouncer) Trigger(fn func()) {
	if d.window <= 0 {
		fn()
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, fn)
}

// Stop cancels any pending invocation without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
