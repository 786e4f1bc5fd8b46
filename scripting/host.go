/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/suparena/dynascript/engine"
	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
	"github.com/suparena/dynascript/registry"
	"github.com/suparena/dynascript/resultset"
)

// Session is the state and services scripts reach through session.*.
type Session interface {
	Query(ctx context.Context, expression string, opts engine.Options) *pending.Op[*resultset.ResultSet]
	Persist(ctx context.Context, rs *resultset.ResultSet) *pending.Op[int]
	CurrentResultSet() *resultset.ResultSet
	SetCurrentResultSet(rs *resultset.ResultSet)
}

// UI is the user-interface side scripts reach through ui.*.
type UI interface {
	Alert(message string) *pending.Op[struct{}]
	Prompt(message string) *pending.Op[string]
	ReportError(err error) *pending.Op[struct{}]
	Print(message string)
}

// Command is a named script callback.
type Command struct {
	Name string
	// Script is the module that registered the command, empty when it was
	// registered outside of script loading.
	Script   string
	callback goja.Callable
}

// Host runs user scripts on a single job loop.
type Host struct {
	session  Session
	ui       UI
	commands *registry.Registry[*Command]
	dirs     []fs.FS
	limit    time.Duration
	perms    Permissions
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	loop   *eventLoop

	// Loop goroutine only.
	vm         *goja.Runtime
	watchdog   *watchdog
	req        *require.RequireModule
	errSym     *goja.Symbol
	active     *invocation
	loading    string
	unhandled  map[*goja.Promise]*invocation
	running    map[string]bool
	waiting    map[string][]*invocation
	inflight   map[*invocation]struct{}
	sessionObj *goja.Object
	uiObj      *goja.Object
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger for script output and host diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithLookupDirs sets the directories scripts are loaded and required from,
// searched in order.
func WithLookupDirs(dirs ...fs.FS) Option {
	return func(h *Host) {
		h.dirs = append(h.dirs, dirs...)
	}
}

// WithExecLimit bounds every synchronous run of script code. Zero disables
// the limit.
func WithExecLimit(d time.Duration) Option {
	return func(h *Host) {
		h.limit = d
	}
}

// WithPermissions sets the capabilities of the dynascript/os module.
func WithPermissions(p Permissions) Option {
	return func(h *Host) {
		h.perms = p
	}
}

// WithRegistry shares a command registry with the host.
func WithRegistry(r *registry.Registry[*Command]) Option {
	return func(h *Host) {
		if r != nil {
			h.commands = r
		}
	}
}

// New creates a host and starts its job loop.
func New(session Session, ui UI, opts ...Option) *Host {
	h := &Host{
		session:   session,
		ui:        ui,
		commands:  registry.New[*Command](),
		logger:    slog.Default(),
		loop:      newEventLoop(),
		unhandled: make(map[*goja.Promise]*invocation),
		running:   make(map[string]bool),
		waiting:   make(map[string][]*invocation),
		inflight:  make(map[*invocation]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.setupRuntime()
	go h.loop.run(h.exec)
	return h
}

// Commands returns the registered command names in sorted order.
func (h *Host) Commands() []string {
	return h.commands.Names()
}

// Command returns the registered command called name.
func (h *Host) Command(name string) (*Command, bool) {
	return h.commands.Lookup(name)
}

// LoadScript runs the named module from the lookup directories. Commands
// it registers are available once LoadScript returns.
func (h *Host) LoadScript(ctx context.Context, name string) error {
	done := make(chan error, 1)
	ok := h.loop.post(func() *invocation {
		err := fmt.Errorf("script %s did not finish loading", name)
		h.loading = name
		defer func() {
			h.loading = ""
			done <- err
		}()

		if _, rerr := h.req.Require("./" + name); rerr != nil {
			err = h.scriptError(name, rerr)
			return nil
		}
		err = nil
		return nil
	})
	if !ok {
		return ErrClosed
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("load script %s: %w", name, err)
		}
		h.logger.Debug("script loaded", "script", name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadScripts loads each named script in order and stops at the first
// failure.
func (h *Host) LoadScripts(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := h.LoadScript(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Invoke runs the command called name. The returned operation settles when
// the command's promise chain has settled. An unregistered name fails with
// errors.ErrUnknownCommand without running anything.
func (h *Host) Invoke(ctx context.Context, name string) *pending.Op[struct{}] {
	if _, ok := h.commands.Lookup(name); !ok {
		return pending.Rejected[struct{}](errors.NewUnknownCommandError(name))
	}

	inv := newInvocation(ctx, name)
	if !h.loop.post(func() *invocation {
		return h.schedule(inv)
	}) {
		inv.op.Reject(ErrClosed)
	}
	return inv.op
}

// Close stops the job loop. Invocations that have not settled fail with
// ErrClosed.
func (h *Host) Close() {
	h.cancel()

	done := make(chan struct{})
	if h.loop.post(func() *invocation {
		for inv := range h.inflight {
			inv.op.Reject(ErrClosed)
		}
		for _, queue := range h.waiting {
			for _, inv := range queue {
				inv.op.Reject(ErrClosed)
			}
		}
		close(done)
		return nil
	}) {
		select {
		case <-done:
		case <-time.After(time.Second):
			h.logger.Warn("scripting host did not drain before close")
		}
	}
	h.loop.close()
	<-h.loop.done
}

// exec runs one job on the loop goroutine with the execution limit applied.
func (h *Host) exec(j job) {
	h.vm.ClearInterrupt()
	defer h.vm.ClearInterrupt()
	if h.limit > 0 {
		defer h.watchdog.arm(h.limit)()
	}

	defer func() {
		if r := recover(); r != nil {
			inv := h.active
			h.active = nil
			h.logger.Error("script job panicked", "panic", r)

			err := fmt.Errorf("internal error: %v", r)
			if inv == nil {
				h.ui.ReportError(err)
				return
			}
			inv.fail(failThrown, err)
			h.checkSettled(inv)
		}
	}()

	inv := j()
	h.flushUnhandled()
	if inv != nil {
		h.checkSettled(inv)
	}
}

// recordError attaches err to the running invocation, or reports it when no
// invocation is running.
func (h *Host) recordError(err error) {
	if inv := h.active; inv != nil && !inv.done {
		inv.fail(failAccessor, err)
		return
	}
	h.logger.Error("script error", "error", err)
	h.ui.ReportError(err)
}
