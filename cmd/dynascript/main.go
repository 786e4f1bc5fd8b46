/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"github.com/suparena/dynascript"
	"github.com/suparena/dynascript/config"
	"github.com/suparena/dynascript/logging"
	"github.com/suparena/dynascript/uibridge"
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var scripts, commands stringList

	configPath := flag.String("config", "", "Path to the YAML configuration file")
	envFile := flag.String("env", ".env", "Path to a .env file with environment overrides")
	useTUI := flag.Bool("tui", false, "Run the full-screen terminal interface")
	debug := flag.Bool("debug", false, "Enable debug logging")
	versionFlag := flag.Bool("version", false, "Show version information")
	flag.Var(&scripts, "script", "Script to load at startup (repeatable)")
	flag.Var(&commands, "run", "Command to run and exit (repeatable)")
	flag.Parse()

	if *versionFlag {
		info := dynascript.GetVersionInfo()
		fmt.Printf("dynascript version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Log.Debug = true
	}
	cfg.Scripts.Load = append(cfg.Scripts.Load, scripts...)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if *useTUI && cfg.Log.File == "" {
		// The TUI owns the terminal.
		cfg.Log.File = "dynascript.log"
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case len(commands) > 0:
		err = runCommands(ctx, cfg, logger, commands)
	case *useTUI:
		err = runTUI(ctx, cfg, logger)
	case interactive:
		err = runREPL(ctx, cfg, logger)
	default:
		err = fmt.Errorf("stdin is not a terminal; use -run to name the commands to run")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}

// runCommands runs each named command in order and stops at the first
// failure. Prompts read from stdin.
func runCommands(ctx context.Context, cfg config.Config, logger *slog.Logger, names []string) error {
	sink := uibridge.NewHeadlessSink(os.Stdout, os.Stdin)
	session, err := dynascript.Open(ctx, cfg, sink, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	for _, name := range names {
		if err := session.Run(ctx, name); err != nil {
			return fmt.Errorf("command %s: %w", name, err)
		}
	}
	return nil
}
