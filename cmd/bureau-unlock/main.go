// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/unlock/lib/clock"
	"github.com/bureau-foundation/unlock/lib/config"
	"github.com/bureau-foundation/unlock/lib/version"
)

const programName = "bureau-unlock"

// Exit codes.
const (
	exitOpened = 0
	exitClosed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		clock:  clock.Real(),
	}))
}

// environment is the process surface a command touches. Tests replace
// every field.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	clock  clock.Clock
}

// command is one subcommand. run returns an exit code, or an error
// which main reports as a usage failure when it is a *usageError and a
// closed result otherwise.
type command struct {
	name    string
	summary string
	run     func(arguments []string, env *environment) (int, error)
}

var commands = []command{
	{"open", "verify a token for a room (default)", runOpen},
	{"mint", "issue a token signed by the authority key", runMint},
	{"keygen", "generate a new authority key", runKeygen},
	{"form", "interactive unlock form", runForm},
}

func run(arguments []string, env *environment) int {
	if len(arguments) > 0 {
		switch arguments[0] {
		case "--version", "version":
			version.Fprint(env.stdout, programName)
			return exitOpened
		case "-h", "--help", "help":
			printHelp(env.stdout)
			return exitOpened
		}
	}
	if len(arguments) == 0 {
		printHelp(env.stderr)
		return exitUsage
	}

	selected, rest := selectCommand(arguments)
	if selected == nil {
		fmt.Fprintf(env.stderr, "error: unknown command %q\n\n", arguments[0])
		printHelp(env.stderr)
		return exitUsage
	}

	code, err := selected.run(rest, env)
	if err == nil {
		return code
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOpened
	}
	fmt.Fprintf(env.stderr, "error: %v\n", err)
	var usage *usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	return exitClosed
}

// selectCommand picks the subcommand named by the first argument, or
// open when the first argument is a flag.
func selectCommand(arguments []string) (*command, []string) {
	if strings.HasPrefix(arguments[0], "-") {
		return &commands[0], arguments
	}
	for index := range commands {
		if commands[index].name == arguments[0] {
			return &commands[index], arguments[1:]
		}
	}
	return nil, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "%s checks whether a capability token opens a room.\n\n", programName)
	fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n\nCommands:\n", programName)
	for _, entry := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", entry.name, entry.summary)
	}
	fmt.Fprintf(w, "\nRun '%s <command> --help' for command flags.\n", programName)
}

// usageError marks bad flags, arguments or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// commonFlags are accepted by every command that needs configuration.
type commonFlags struct {
	configPath string
	logLevel   string
}

func (flags *commonFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&flags.configPath, "config", "", "config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

// loadConfig loads and validates the configuration. Failures are usage
// errors.
func (flags *commonFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("loading config: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: fmt.Errorf("invalid config: %w", err)}
	}
	return cfg, nil
}

// newFlagSet returns a ContinueOnError flag set whose usage output goes
// to env.stderr.
func newFlagSet(name, synopsis string, env *environment) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(programName+" "+name, pflag.ContinueOnError)
	flagSet.SetOutput(env.stderr)
	flagSet.Usage = func() {
		fmt.Fprintf(env.stderr, "Usage: %s %s %s\n\nFlags:\n", programName, name, synopsis)
		flagSet.PrintDefaults()
	}
	return flagSet
}

// parseFlags parses arguments and rejects positional arguments.
func parseFlags(flagSet *pflag.FlagSet, arguments []string) error {
	if err := flagSet.Parse(arguments); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &usageError{err: err}
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return usagef("unexpected argument: %s", extra[0])
	}
	return nil
}
