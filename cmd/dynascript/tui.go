/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suparena/dynascript"
	"github.com/suparena/dynascript/config"
	dserrors "github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/uibridge/teasink"
)

// runTUI starts the program first so that sends made while scripts load
// have a receiver. The palette is inert until the session is open.
func runTUI(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var current atomic.Pointer[dynascript.Session]
	var program *tea.Program

	run := func(name string) {
		session := current.Load()
		if session == nil {
			return
		}
		op := session.Invoke(ctx, name)
		// run is called from Update, which must not block on Send.
		go func() {
			program.Send(teasink.StatusMsg("running " + name))
			_, err := op.Wait(ctx)
			switch {
			case err == nil:
				program.Send(teasink.StatusMsg(name + " done"))
			case dserrors.Is(err, dserrors.ErrUnknownCommand):
				program.Send(teasink.StatusMsg(err.Error()))
			default:
				program.Send(teasink.StatusMsg(fmt.Sprintf("%s failed (%s)", name, dserrors.KindOf(err))))
			}
		}()
	}
	commands := func() []string {
		if session := current.Load(); session != nil {
			return session.Commands()
		}
		return nil
	}

	program = tea.NewProgram(teasink.NewModel(run, commands), tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := program.Run()
		done <- err
	}()

	session, err := dynascript.Open(ctx, cfg, teasink.New(program), logger)
	if err != nil {
		program.Quit()
		<-done
		return err
	}
	defer session.Close()

	session.OnResultSetChanged(func(rs *resultset.ResultSet) {
		if rs == nil {
			program.Send(teasink.StatusMsg("no result set"))
			return
		}
		program.Send(teasink.ResultSetMsg{
			Table:      rs.Table().Name,
			Expression: rs.Expression(),
			Rows:       rs.Len(),
		})
	})
	current.Store(session)
	program.Send(teasink.StatusMsg(fmt.Sprintf("%d command(s) loaded", len(session.Commands()))))

	if err := <-done; err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
