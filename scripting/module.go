/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"

	"github.com/suparena/dynascript/engine"
	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
)

// ModuleName is the name scripts require to reach the host.
const ModuleName = "dynascript"

func (h *Host) setupRuntime() {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	vm.SetPromiseRejectionTracker(h.trackRejection)
	h.vm = vm
	h.watchdog = newWatchdog(vm.Interrupt)
	h.errSym = goja.NewSymbol("dynascript.error")

	modules := require.NewRegistry(require.WithLoader(h.loadSource))
	modules.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(consolePrinter{h.logger}))
	modules.RegisterNativeModule(ModuleName, h.loadModule)
	modules.RegisterNativeModule(OSModuleName, h.loadOSModule)
	h.req = modules.Enable(vm)
	console.Enable(vm)

	h.sessionObj = h.newSessionObject()
	h.uiObj = h.newUIObject()
}

// loadSource resolves module paths against the lookup directories only.
func (h *Host) loadSource(p string) ([]byte, error) {
	name := strings.TrimPrefix(path.Clean(p), "/")
	if !fs.ValidPath(name) {
		return nil, require.ModuleFileDoesNotExistError
	}

	for _, dir := range h.dirs {
		info, err := fs.Stat(dir, name)
		if err != nil || info.IsDir() {
			continue
		}
		return fs.ReadFile(dir, name)
	}
	return nil, require.ModuleFileDoesNotExistError
}

func (h *Host) loadModule(_ *goja.Runtime, module *goja.Object) {
	exports := module.Get("exports").(*goja.Object)
	_ = exports.Set("session", h.sessionObj)
	_ = exports.Set("ui", h.uiObj)
}

func (h *Host) newSessionObject() *goja.Object {
	vm := h.vm
	obj := vm.NewObject()

	_ = obj.Set("registerCommand", h.registerCommand)
	_ = obj.Set("query", h.query)
	_ = obj.Set("persist", h.persist)
	_ = obj.Set("commands", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(stringsToValues(h.commands.Names()))
	})
	_ = obj.DefineAccessorProperty("currentResultSet",
		vm.ToValue(func(goja.FunctionCall) goja.Value {
			return h.resultSetValue(h.session.CurrentResultSet())
		}),
		vm.ToValue(h.setCurrentResultSet),
		goja.FLAG_FALSE, goja.FLAG_TRUE)

	return obj
}

func (h *Host) newUIObject() *goja.Object {
	obj := h.vm.NewObject()

	_ = obj.Set("alert", func(call goja.FunctionCall) goja.Value {
		op := h.ui.Alert(joinArgs(call.Arguments))
		return bindOp(h, op, func(struct{}) goja.Value { return goja.Undefined() })
	})
	_ = obj.Set("print", func(call goja.FunctionCall) goja.Value {
		h.ui.Print(joinArgs(call.Arguments))
		return goja.Undefined()
	})
	_ = obj.Set("prompt", func(call goja.FunctionCall) goja.Value {
		op := h.ui.Prompt(call.Argument(0).String())
		return bindOp(h, op, func(s string) goja.Value { return h.vm.ToValue(s) })
	})

	return obj
}

func (h *Host) registerCommand(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if name == "" || !ok {
		panic(h.vm.NewTypeError("registerCommand expects a name and a function"))
	}

	replaced := h.commands.Register(name, &Command{Name: name, Script: h.loading, callback: fn})
	h.logger.Debug("command registered", "command", name, "script", h.loading, "replaced", replaced)
	return goja.Undefined()
}

func (h *Host) query(call goja.FunctionCall) goja.Value {
	var expression string
	if arg := call.Argument(0); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
		expression = arg.String()
	}

	var m map[string]any
	if arg := call.Argument(1); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
		m, _ = arg.Export().(map[string]any)
	}

	op := h.session.Query(h.opContext(), expression, engine.OptionsFromMap(m))
	return bindOp(h, op, h.resultSetValue)
}

func (h *Host) persist(call goja.FunctionCall) goja.Value {
	rs := h.session.CurrentResultSet()
	if arg := call.Argument(0); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
		rso, ok := arg.Export().(*resultSetObject)
		if !ok {
			panic(h.vm.NewTypeError("persist expects a result set"))
		}
		rs = rso.rs
	}

	var op *pending.Op[int]
	if rs == nil {
		op = pending.Rejected[int](errNoResultSet)
	} else {
		op = h.session.Persist(h.opContext(), rs)
	}
	return bindOp(h, op, func(n int) goja.Value { return h.vm.ToValue(n) })
}

func (h *Host) setCurrentResultSet(call goja.FunctionCall) goja.Value {
	v := call.Argument(0)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		h.session.SetCurrentResultSet(nil)
		return goja.Undefined()
	}

	rso, ok := v.Export().(*resultSetObject)
	if !ok {
		h.recordError(errors.NewTypeMismatchError("currentResultSet", "ResultSet", jsTypeName(v)))
		return goja.Undefined()
	}
	h.session.SetCurrentResultSet(rso.rs)
	return goja.Undefined()
}

// joinArgs concatenates the string forms of args.
func joinArgs(args []goja.Value) string {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(arg.String())
	}
	return sb.String()
}

// opContext is the context remote work started by script code runs under.
func (h *Host) opContext() context.Context {
	if h.active != nil {
		return h.active.ctx
	}
	return h.ctx
}

// consolePrinter routes console.* output to the host logger.
type consolePrinter struct {
	logger *slog.Logger
}

func (p consolePrinter) Log(s string)   { p.logger.Info(s, "source", "console") }
func (p consolePrinter) Warn(s string)  { p.logger.Warn(s, "source", "console") }
func (p consolePrinter) Error(s string) { p.logger.Error(s, "source", "console") }
