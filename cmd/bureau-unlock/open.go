// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/unlock/lib/authority"
	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/config"
	"github.com/bureau-foundation/unlock/lib/roompolicy"
	"github.com/bureau-foundation/unlock/lib/secret"
	"github.com/bureau-foundation/unlock/lib/unlock"
)

func runOpen(arguments []string, env *environment) (int, error) {
	var common commonFlags
	var roomID, token, tokenFile string
	var explain bool

	flagSet := newFlagSet("open", "--room ROOM (--token TOKEN | --token-file PATH)", env)
	common.register(flagSet)
	flagSet.StringVar(&roomID, "room", "", "room identifier")
	flagSet.StringVar(&token, "token", "", "base64 capability token")
	flagSet.StringVar(&tokenFile, "token-file", "", "read the token from a file (\"-\" for stdin)")
	flagSet.BoolVar(&explain, "explain", false, "print the token's ID, expiry and payload to stderr before verifying")
	if err := parseFlags(flagSet, arguments); err != nil {
		return exitUsage, err
	}
	if token != "" && tokenFile != "" {
		return exitUsage, usagef("--token and --token-file are mutually exclusive")
	}

	logger, err := newLogger(env.stderr, common.logLevel)
	if err != nil {
		return exitUsage, err
	}
	cfg, err := common.loadConfig()
	if err != nil {
		return exitUsage, err
	}

	if tokenFile != "" {
		token, err = readToken(tokenFile, env)
		if err != nil {
			return exitUsage, usagef("reading token: %v", err)
		}
	}

	if explain && token != "" {
		explainToken(env.stderr, token)
	}

	key, err := cfg.LoadAuthority()
	if err != nil {
		return exitUsage, &usageError{err: fmt.Errorf("loading authority key: %w", err)}
	}
	defer key.Close()

	machine, err := newMachine(cfg, key, env, logger.With("command", "open"))
	if err != nil {
		return exitUsage, err
	}

	if err := machine.Submit(roomID, token); err != nil {
		if errors.Is(err, unlock.ErrInvalidSubmission) {
			return exitUsage, usagef("--room (at most %d characters) and a token are required", unlock.MaxRoomIDLength)
		}
		return exitClosed, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	settled, err := machine.Wait(ctx)
	if err != nil {
		return exitClosed, fmt.Errorf("interrupted while verifying: %w", err)
	}

	fmt.Fprintln(env.stdout, settled.Message)
	if settled.Status != unlock.StateSuccess {
		logger.Debug("door stayed closed", "room", roomID, "reason", settled.Reason)
		return exitClosed, nil
	}
	return exitOpened, nil
}

// readToken reads token text from path, or the first line of stdin
// when path is "-". File contents pass through a secret buffer so the
// raw read is zeroed.
func readToken(path string, env *environment) (string, error) {
	if path == "-" {
		return readFirstLine(env.stdin)
	}
	buffer, err := secret.ReadFromPath(path)
	if err != nil {
		return "", err
	}
	defer buffer.Close()
	return buffer.String(), nil
}

// newMachine builds the unlock machine the open and form commands use.
func newMachine(cfg *config.Config, key *authority.KeyPair, env *environment, logger *slog.Logger) (*unlock.Machine, error) {
	delay, err := cfg.DisplayDelay()
	if err != nil {
		return nil, &usageError{err: err}
	}
	timeout, err := cfg.AttemptTimeout()
	if err != nil {
		return nil, &usageError{err: err}
	}

	revoked := cfg.Revocations()
	logger.Debug("unlock machine configured",
		"owner", cfg.Unlock.Owner,
		"display_delay", delay,
		"attempt_timeout", timeout,
		"revoked_tokens", revoked.Len(),
	)

	attempt := &unlock.TokenAttempt{
		Authority: key,
		Policy:    roompolicy.Builder{Owner: cfg.Unlock.Owner},
		Verifier: &capability.Verifier{
			Clock:   env.clock,
			Revoked: revoked,
		},
	}
	return unlock.New(attempt,
		unlock.WithClock(env.clock),
		unlock.WithLogger(logger),
		unlock.WithDisplayDelay(delay),
		unlock.WithTimeout(timeout),
	), nil
}
