/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/dop251/goja"

	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
)

// OSModuleName is the module scripts require to run processes and read the
// environment.
const OSModuleName = "dynascript/os"

// Permissions gate the dynascript/os module. The zero value denies
// everything.
type Permissions struct {
	// AllowShellCommands permits system, exec and openUri.
	AllowShellCommands bool
	// AllowEnv permits env.
	AllowEnv bool
}

func (h *Host) loadOSModule(_ *goja.Runtime, module *goja.Object) {
	exports := module.Get("exports").(*goja.Object)
	_ = exports.Set("system", h.osSystem)
	_ = exports.Set("exec", h.osExec)
	_ = exports.Set("openUri", h.osOpenURI)
	_ = exports.Set("env", h.osEnv)
}

// osSystem runs a program without a shell and resolves with its stdout.
// Arguments follow the name, or come as one array.
func (h *Host) osSystem(call goja.FunctionCall) goja.Value {
	name := call.Argument(0)
	if goja.IsUndefined(name) || goja.IsNull(name) || name.String() == "" {
		panic(h.vm.NewTypeError("system expects a program name"))
	}
	return h.runProcess(name.String(), commandArgs(call.Arguments[1:]), h.vm.ToValue)
}

// osExec runs a command line through the shell and resolves with its stdout.
func (h *Host) osExec(call goja.FunctionCall) goja.Value {
	line := call.Argument(0)
	if goja.IsUndefined(line) || goja.IsNull(line) || line.String() == "" {
		panic(h.vm.NewTypeError("exec expects a command line"))
	}
	name, args := shellCommand(line.String())
	return h.runProcess(name, args, h.vm.ToValue)
}

// osOpenURI hands uri to the desktop's default handler.
func (h *Host) osOpenURI(call goja.FunctionCall) goja.Value {
	uri := call.Argument(0)
	if goja.IsUndefined(uri) || goja.IsNull(uri) || uri.String() == "" {
		panic(h.vm.NewTypeError("openUri expects a URI"))
	}
	name, args := openCommand(uri.String())
	return h.runProcess(name, args, func(any) goja.Value { return goja.Undefined() })
}

// osEnv returns the named environment variable, or undefined when unset.
func (h *Host) osEnv(call goja.FunctionCall) goja.Value {
	if !h.perms.AllowEnv {
		panic(h.newError(errors.NewPermissionError("read the environment")))
	}
	v, ok := os.LookupEnv(call.Argument(0).String())
	if !ok {
		return goja.Undefined()
	}
	return h.vm.ToValue(v)
}

func (h *Host) runProcess(name string, args []string, convert func(any) goja.Value) goja.Value {
	var op *pending.Op[string]
	if !h.perms.AllowShellCommands {
		op = pending.Rejected[string](errors.NewPermissionError("shell out"))
	} else {
		h.logger.Debug("running process", "command", name, "args", args)
		op = commandOutput(h.opContext(), name, args)
	}
	return bindOp(h, op, func(out string) goja.Value { return convert(out) })
}

// commandOutput runs the command off the loop. A failed command is
// rejected with its stderr.
func commandOutput(ctx context.Context, name string, args []string) *pending.Op[string] {
	op := pending.New[string]()
	cmd := exec.CommandContext(ctx, name, args...)

	go func() {
		out, err := cmd.Output()
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
				err = fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(exitErr.Stderr))
			} else {
				err = fmt.Errorf("%s: %w", name, err)
			}
			op.Reject(err)
			return
		}
		op.Resolve(string(out))
	}()
	return op
}

// commandArgs flattens script arguments into process arguments.
func commandArgs(values []goja.Value) []string {
	var args []string
	for _, v := range values {
		if list, ok := v.Export().([]any); ok {
			for _, item := range list {
				args = append(args, fmt.Sprint(item))
			}
			continue
		}
		args = append(args, v.String())
	}
	return args
}

func shellCommand(line string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", line}
	}
	return "/bin/sh", []string{"-c", line}
}

func openCommand(uri string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{uri}
	case "windows":
		return "cmd", []string{"/c", "start", "", uri}
	}
	return "xdg-open", []string{uri}
}
