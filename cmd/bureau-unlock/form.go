// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/unlock/lib/tui"
	"github.com/bureau-foundation/unlock/lib/unlock"
)

func runForm(arguments []string, env *environment) (int, error) {
	var common commonFlags
	var logOutput string

	flagSet := newFlagSet("form", "[--log-output PATH]", env)
	common.register(flagSet)
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (the form owns the terminal)")
	if err := parseFlags(flagSet, arguments); err != nil {
		return exitUsage, err
	}
	if !isTerminal(env.stdin) {
		return exitUsage, usagef("form needs an interactive terminal; use 'open' in scripts")
	}

	logger := slog.New(slog.DiscardHandler)
	if logOutput != "" {
		file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return exitUsage, usagef("opening --log-output: %v", err)
		}
		defer file.Close()
		var level slog.Level
		if err := level.UnmarshalText([]byte(common.logLevel)); err != nil {
			return exitUsage, usagef("invalid --log-level %q", common.logLevel)
		}
		logger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return exitUsage, err
	}
	key, err := cfg.LoadAuthority()
	if err != nil {
		return exitUsage, &usageError{err: fmt.Errorf("loading authority key: %w", err)}
	}
	defer key.Close()

	machine, err := newMachine(cfg, key, env, logger.With("command", "form"))
	if err != nil {
		return exitUsage, err
	}

	final, err := runProgram(machine, env.stdin, env.stdout)
	if err != nil {
		return exitClosed, err
	}
	if final.Status == unlock.StateSuccess {
		return exitOpened, nil
	}
	return exitClosed, nil
}

// runProgram runs the form until the user quits and returns the
// machine's context at that point.
func runProgram(machine *unlock.Machine, input io.Reader, output io.Writer) (unlock.Context, error) {
	program := tea.NewProgram(
		tui.NewForm(machine, tui.DefaultTheme),
		tea.WithInput(input),
		tea.WithOutput(output),
		tea.WithAltScreen(),
	)
	unsubscribe := machine.Subscribe(func(context unlock.Context) {
		program.Send(tui.ContextMsg(context))
	})
	defer unsubscribe()

	if _, err := program.Run(); err != nil {
		return machine.Current(), fmt.Errorf("running form: %w", err)
	}
	return machine.Current(), nil
}
