/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import "sync"

// job runs on the loop goroutine. It returns the invocation whose state it
// may have changed, or nil.
type job func() *invocation

// eventLoop is a FIFO job queue drained by one goroutine.
type eventLoop struct {
	mu     sync.Mutex
	jobs   []job
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newEventLoop() *eventLoop {
	return &eventLoop{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// post queues j. It reports false once the loop is closed.
func (l *eventLoop) post(j job) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.jobs = append(l.jobs, j)
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
	return true
}

func (l *eventLoop) next() (job, bool) {
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return nil, false
		}
		if len(l.jobs) > 0 {
			j := l.jobs[0]
			l.jobs[0] = nil
			l.jobs = l.jobs[1:]
			l.mu.Unlock()
			return j, true
		}
		l.mu.Unlock()
		<-l.signal
	}
}

// run drains the queue until close. exec is called for every job.
func (l *eventLoop) run(exec func(job)) {
	defer close(l.done)
	for {
		j, ok := l.next()
		if !ok {
			return
		}
		exec(j)
	}
}

// close stops the loop after the running job and drops queued ones.
func (l *eventLoop) close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.jobs = nil
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
}
