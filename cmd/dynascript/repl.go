/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/suparena/dynascript"
	"github.com/suparena/dynascript/config"
	dserrors "github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/uibridge"
)

// replSink prints alerts and errors directly and hands prompts to the REPL
// loop, which owns the readline instance. Prompts are only delivered while
// the loop is servicing a command; any other prompt is cancelled.
type replSink struct {
	out io.Writer

	mu      sync.Mutex
	serving *promptService
}

// promptService is one command run's prompt channel.
type promptService struct {
	prompts chan *uibridge.Request
	stop    chan struct{}
}

// attach starts delivering prompts to the returned service.
func (s *replSink) attach() *promptService {
	svc := &promptService{
		prompts: make(chan *uibridge.Request),
		stop:    make(chan struct{}),
	}
	s.mu.Lock()
	s.serving = svc
	s.mu.Unlock()
	return svc
}

// detach stops delivery to svc. A prompt waiting for svc is cancelled.
func (s *replSink) detach(svc *promptService) {
	s.mu.Lock()
	if s.serving == svc {
		s.serving = nil
	}
	s.mu.Unlock()
	close(svc.stop)
}

func (s *replSink) prompt(req *uibridge.Request) {
	s.mu.Lock()
	svc := s.serving
	s.mu.Unlock()

	if svc == nil {
		fmt.Fprintf(s.out, "prompt %q cancelled: no command is running\n", req.Message)
		req.Cancel()
		return
	}
	select {
	case svc.prompts <- req:
	case <-svc.stop:
		req.Cancel()
	}
}

// Status prints a ui.print message.
func (s *replSink) Status(message string) {
	fmt.Fprintln(s.out, message)
}

func (s *replSink) Show(req *uibridge.Request) {
	switch req.Kind {
	case uibridge.KindPrompt:
		s.prompt(req)
	case uibridge.KindError:
		fmt.Fprintf(s.out, "error: %s\n", req.Message)
		req.Ack()
	default:
		fmt.Fprintln(s.out, req.Message)
		req.Ack()
	}
}

type repl struct {
	rl      *readline.Instance
	session *dynascript.Session
	sink    *replSink
}

func runREPL(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var session *dynascript.Session

	completer := readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("tables"),
		readline.PcItem("quit"),
		readline.PcItemDynamic(func(string) []string {
			if session == nil {
				return nil
			}
			return session.Commands()
		}),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "dynascript> ",
		HistoryFile:       historyFile(),
		HistoryLimit:      500,
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	sink := &replSink{out: rl.Stdout()}
	session, err = dynascript.Open(ctx, cfg, sink, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	session.OnResultSetChanged(func(rs *resultset.ResultSet) {
		if rs == nil {
			return
		}
		fmt.Fprintf(rl.Stdout(), "[%s] %d row(s) for %q\n", rs.Table().Name, rs.Len(), rs.Expression())
	})

	r := &repl{rl: rl, session: session, sink: sink}
	fmt.Fprintf(rl.Stdout(), "dynascript %s. Type 'help' for commands.\n", dynascript.Version)
	return r.loop(ctx)
}

func (r *repl) loop(ctx context.Context) error {
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			return nil
		case "help", "commands":
			r.printHelp()
		case "tables":
			r.listTables(ctx)
		default:
			r.invoke(ctx, line)
		}
	}
}

// invoke runs a command and services its prompts until it settles.
// Ctrl-C while a command is running cancels it.
func (r *repl) invoke(ctx context.Context, name string) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc := r.sink.attach()
	defer r.sink.detach(svc)

	op := r.session.Invoke(runCtx, name)
	for {
		select {
		case <-op.Done():
			if _, err := op.Result(); err != nil && dserrors.Is(err, dserrors.ErrUnknownCommand) {
				fmt.Fprintf(r.rl.Stdout(), "%v\n", err)
			}
			return
		case req := <-svc.prompts:
			r.answer(req, cancel)
		case <-ctx.Done():
			return
		}
	}
}

func (r *repl) answer(req *uibridge.Request, cancel context.CancelFunc) {
	r.rl.SetPrompt(req.Message + " ")
	defer r.rl.SetPrompt("dynascript> ")

	line, err := r.rl.Readline()
	switch {
	case err == readline.ErrInterrupt:
		req.Cancel()
		cancel()
	case err != nil:
		req.Cancel()
	default:
		req.Answer(line)
	}
}

func (r *repl) listTables(ctx context.Context) {
	tables, err := r.session.ListTables(ctx).Wait(ctx)
	if err != nil {
		fmt.Fprintf(r.rl.Stdout(), "error: %v\n", err)
		return
	}
	for _, name := range tables {
		fmt.Fprintln(r.rl.Stdout(), name)
	}
}

func (r *repl) printHelp() {
	out := r.rl.Stdout()
	fmt.Fprintln(out, "Builtins:")
	fmt.Fprintln(out, "  help      Show this help")
	fmt.Fprintln(out, "  tables    List the tables of the connected store")
	fmt.Fprintln(out, "  quit      Exit")
	commands := r.session.Commands()
	if len(commands) == 0 {
		fmt.Fprintln(out, "No commands registered.")
		return
	}
	fmt.Fprintln(out, "Commands:")
	for _, name := range commands {
		fmt.Fprintf(out, "  %s\n", name)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dynascript_history")
}
