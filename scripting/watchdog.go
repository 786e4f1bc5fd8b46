/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	"sync"
	"time"
)

// watchdog interrupts a job that runs past its limit. Each arm starts a new
// generation; a timer from an earlier generation that fires late does
// nothing.
type watchdog struct {
	mu        sync.Mutex
	gen       uint64
	interrupt func(v any)
}

func newWatchdog(interrupt func(v any)) *watchdog {
	return &watchdog{interrupt: interrupt}
}

// arm starts the limit for one job. The returned func must be called when
// the job ends; after it returns no interrupt from this generation fires.
func (w *watchdog) arm(limit time.Duration) (disarm func()) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	timer := time.AfterFunc(limit, func() { w.fire(gen) })
	return func() {
		timer.Stop()
		w.mu.Lock()
		if w.gen == gen {
			w.gen++
		}
		w.mu.Unlock()
	}
}

// fire interrupts the job of generation gen if it is still running.
func (w *watchdog) fire(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gen != gen {
		return false
	}
	w.interrupt(errExecLimit)
	return true
}
