/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
)

// failure ranks the ways an invocation can fail. A higher rank replaces a
// lower one recorded in the same job.
type failure int

const (
	failAccessor failure = iota + 1
	failUnhandled
	failReturned
	failThrown
)

// invocation is one run of a command. All fields are owned by the loop
// goroutine.
type invocation struct {
	ctx  context.Context
	name string
	op   *pending.Op[struct{}]

	called      bool
	done        bool
	released    bool
	outstanding int
	returned    *goja.Promise

	err  error
	rank failure
}

func newInvocation(ctx context.Context, name string) *invocation {
	return &invocation{
		ctx:  ctx,
		name: name,
		op:   pending.New[struct{}](),
	}
}

func (inv *invocation) fail(rank failure, err error) {
	if inv.done || err == nil {
		return
	}
	if inv.err == nil || rank > inv.rank {
		inv.err = err
		inv.rank = rank
	}
}

// schedule starts inv unless another invocation of the same command is
// still running, in which case inv waits for it.
func (h *Host) schedule(inv *invocation) *invocation {
	if h.running[inv.name] {
		h.waiting[inv.name] = append(h.waiting[inv.name], inv)
		h.logger.Debug("command queued", "command", inv.name, "op", inv.op.ID())
		return nil
	}
	return h.start(inv)
}

func (h *Host) start(inv *invocation) *invocation {
	h.running[inv.name] = true
	h.inflight[inv] = struct{}{}
	inv.called = true

	cmd, ok := h.commands.Lookup(inv.name)
	if !ok {
		inv.fail(failThrown, errors.NewUnknownCommandError(inv.name))
		return inv
	}
	if err := inv.ctx.Err(); err != nil {
		inv.fail(failThrown, err)
		return inv
	}

	h.logger.Debug("invoking command", "command", inv.name, "op", inv.op.ID())

	h.active = inv
	ret, err := cmd.callback(goja.Undefined())
	h.active = nil

	if err != nil {
		inv.fail(failThrown, h.scriptError(cmd.Script, err))
		return inv
	}
	if ret != nil {
		if p, ok := ret.Export().(*goja.Promise); ok {
			inv.returned = p
		}
	}
	return inv
}

// checkSettled settles inv once its chain can make no further progress or
// has failed. A failed invocation settles at once but keeps its command's
// slot until its outstanding host operations have completed.
func (h *Host) checkSettled(inv *invocation) {
	if !inv.called {
		return
	}

	if !inv.done {
		if inv.err == nil {
			if inv.outstanding > 0 {
				return
			}
			if p := inv.returned; p != nil {
				switch p.State() {
				case goja.PromiseStateRejected:
					inv.fail(failReturned, h.toError(p.Result()))
				case goja.PromiseStatePending:
					h.logger.Warn("command returned a promise that can no longer settle", "command", inv.name)
				}
			}
		}
		h.finish(inv)
	}

	if !inv.released && inv.outstanding == 0 {
		h.release(inv)
	}
}

func (h *Host) finish(inv *invocation) {
	err := inv.err
	inv.done = true
	delete(h.inflight, inv)

	if err != nil {
		h.logger.Error("command failed", "command", inv.name, "op", inv.op.ID(), "kind", errors.KindOf(err), "error", err)
		h.ui.ReportError(fmt.Errorf("command %s: %w", inv.name, err))
	} else {
		h.logger.Debug("command finished", "command", inv.name, "op", inv.op.ID())
	}
	inv.op.Settle(struct{}{}, err)
}

// release frees the command slot held by inv and starts the next queued
// invocation of the same command.
func (h *Host) release(inv *invocation) {
	inv.released = true
	delete(h.running, inv.name)
	queue := h.waiting[inv.name]
	if len(queue) == 0 {
		return
	}
	next := queue[0]
	if len(queue) == 1 {
		delete(h.waiting, inv.name)
	} else {
		h.waiting[inv.name] = queue[1:]
	}
	h.running[inv.name] = true
	if !h.loop.post(func() *invocation { return h.start(next) }) {
		next.op.Reject(ErrClosed)
	}
}

// trackRejection is the runtime's promise rejection tracker.
func (h *Host) trackRejection(p *goja.Promise, op goja.PromiseRejectionOperation) {
	switch op {
	case goja.PromiseRejectionReject:
		h.unhandled[p] = h.active
	case goja.PromiseRejectionHandle:
		delete(h.unhandled, p)
	}
}

// flushUnhandled fails the owners of promises that were rejected during the
// last job and are still without a handler.
func (h *Host) flushUnhandled() {
	if len(h.unhandled) == 0 {
		return
	}

	var touched []*invocation
	for p, inv := range h.unhandled {
		delete(h.unhandled, p)
		err := h.toError(p.Result())
		if inv == nil || inv.done {
			h.logger.Error("unhandled promise rejection", "error", err)
			h.ui.ReportError(err)
			continue
		}
		inv.fail(failUnhandled, err)
		touched = append(touched, inv)
	}
	for _, inv := range touched {
		h.checkSettled(inv)
	}
}

// bindOp exposes op to script code as a promise. The op's completion is
// delivered as a job on the loop, attributed to the invocation that started
// it.
func bindOp[T any](h *Host, op *pending.Op[T], convert func(T) goja.Value) goja.Value {
	promise, resolve, reject := h.vm.NewPromise()

	inv := h.active
	if inv != nil {
		inv.outstanding++
	}

	op.OnSettle(func(v T, err error) {
		h.loop.post(func() *invocation {
			if inv != nil {
				inv.outstanding--
			}

			h.active = inv
			var rerr error
			if err != nil {
				rerr = reject(h.newError(err))
			} else {
				rerr = resolve(convert(v))
			}
			if rerr != nil {
				h.recordError(h.scriptError("", rerr))
			}
			h.active = nil
			return inv
		})
	})

	return h.vm.ToValue(promise)
}
