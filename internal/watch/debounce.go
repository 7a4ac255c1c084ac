package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid filesystem events for the same watch into a
// single sync trigger, per spec.md §4.K's "events are debounced with a
// 2s window and batched". Unlike a generic file-event debouncer this one
// only needs to know THAT a watch's folder changed, not how — sync()
// always re-walks the whole folder and hash-compares every file, so the
// coalescing problem reduces to "one pending flush per watch id".
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool

	onFlush func(watchID string)
}

// NewDebouncer creates a debouncer that calls onFlush(watchID) once per
// watch after window has elapsed since that watch's most recent Notify.
func NewDebouncer(window time.Duration, onFlush func(watchID string)) *Debouncer {
	return &Debouncer{
		window:  window,
		timers:  make(map[string]*time.Timer),
		onFlush: onFlush,
	}
}

// Notify records a filesystem event for watchID, (re)starting its debounce
// timer. Rapid repeated calls for the same watch collapse into one flush.
func (d *Debouncer) Notify(watchID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[watchID]; ok {
		t.Stop()
	}
	d.timers[watchID] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		stopped := d.stopped
		delete(d.timers, watchID)
		d.mu.Unlock()
		if !stopped {
			d.onFlush(watchID)
		}
	})
}

// Stop cancels all pending timers. Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = make(map[string]*time.Timer)
}
