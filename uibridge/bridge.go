/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package uibridge

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
)

type entry struct {
	req    *Request
	settle func(reply)
}

// Bridge queues alert, prompt and error requests for a Sink. Requests are
// shown one at a time in arrival order.
type Bridge struct {
	sink   Sink
	logger *slog.Logger

	mu     sync.Mutex
	queue  []entry
	closed bool
	signal chan struct{}
	done   chan struct{}
	stop   chan struct{}
}

// Option configures a Bridge
type Option func(*Bridge)

// WithLogger sets the bridge logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New starts a bridge delivering to sink.
func New(sink Sink, opts ...Option) *Bridge {
	b := &Bridge{
		sink:   sink,
		logger: slog.Default(),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.dispatch()
	return b
}

// Alert displays message and resolves once the sink acknowledges it.
func (b *Bridge) Alert(message string) *pending.Op[struct{}] {
	op := pending.New[struct{}]()
	b.enqueue(newRequest(op.ID(), KindAlert, message), func(reply) {
		op.Resolve(struct{}{})
	}, op.Reject)
	return op
}

// Prompt asks for input. It resolves with the answer or fails with
// errors.ErrCancelled when dismissed.
func (b *Bridge) Prompt(message string) *pending.Op[string] {
	op := pending.New[string]()
	b.enqueue(newRequest(op.ID(), KindPrompt, message), func(rep reply) {
		if rep.cancelled {
			op.Reject(errors.NewCancelledError(message))
			return
		}
		op.Resolve(rep.value)
	}, op.Reject)
	return op
}

// Print shows message on the sink's status line without queueing behind
// alerts and prompts. Sinks without a status line get it logged.
func (b *Bridge) Print(message string) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}

	if ss, ok := b.sink.(StatusSink); ok {
		ss.Status(message)
		return
	}
	b.logger.Info(message, "source", "ui.print")
}

// ReportError displays err. It is used for failures no script handled.
func (b *Bridge) ReportError(err error) *pending.Op[struct{}] {
	op := pending.New[struct{}]()
	message := fmt.Sprintf("%s: %v", errors.KindOf(err), err)
	b.enqueue(newRequest(op.ID(), KindError, message), func(reply) {
		op.Resolve(struct{}{})
	}, op.Reject)
	return op
}

func (b *Bridge) enqueue(req *Request, settle func(reply), reject func(error) bool) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		reject(errors.NewCancelledError(req.Message))
		return
	}
	b.queue = append(b.queue, entry{req: req, settle: settle})
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *Bridge) next() (entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return entry{}, false
	}
	e := b.queue[0]
	b.queue = b.queue[1:]
	return e, true
}

func (b *Bridge) dispatch() {
	defer close(b.done)

	for {
		e, ok := b.next()
		if !ok {
			select {
			case <-b.signal:
				continue
			case <-b.stop:
				return
			}
		}

		b.logger.Debug("ui request", "id", e.req.ID, "kind", e.req.Kind, "message", e.req.Message)
		b.sink.Show(e.req)

		select {
		case rep := <-e.req.reply:
			e.settle(rep)
		case <-b.stop:
			e.settle(reply{cancelled: true})
			return
		}
	}
}

// Close stops the dispatcher. Unanswered prompts fail with errors.ErrCancelled
// and unanswered alerts resolve.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stop)
	<-b.done

	b.mu.Lock()
	queued := b.queue
	b.queue = nil
	b.mu.Unlock()

	for _, e := range queued {
		e.settle(reply{cancelled: true})
	}
}
