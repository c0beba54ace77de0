// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/grant"
)

func runMint(arguments []string, env *environment) (int, error) {
	var common commonFlags
	var grantFile string
	var flagSpec grant.Spec
	var ttl time.Duration

	flagSet := newFlagSet("mint", "[--room ROOM]... [--grants FILE] [--ttl DURATION]", env)
	common.register(flagSet)
	flagSet.StringArrayVar(&flagSpec.Rooms, "room", nil, "room the token opens (repeatable)")
	flagSet.StringArrayVar(&flagSpec.Operations, "operation", nil, "operation granted per room (repeatable, default open)")
	flagSet.StringVar(&grantFile, "grants", "", "JSONC grant file; flags are added to it")
	flagSet.DurationVar(&ttl, "ttl", 0, "token lifetime (default: the grant file's, or never expires)")
	flagSet.StringArrayVar(&flagSpec.Facts, "fact", nil, "extra authority fact, e.g. 'right(#authority, \"lab\", #open)'")
	flagSet.StringArrayVar(&flagSpec.Rules, "rule", nil, "rule evaluated at verification")
	flagSet.StringArrayVar(&flagSpec.Checks, "check", nil, "check that must pass at verification")
	if err := parseFlags(flagSet, arguments); err != nil {
		return exitUsage, err
	}
	if ttl < 0 {
		return exitUsage, usagef("--ttl must not be negative")
	}
	if ttl > 0 {
		flagSpec.TTL = ttl.String()
	}

	logger, err := newLogger(env.stderr, common.logLevel)
	if err != nil {
		return exitUsage, err
	}

	spec := &grant.Spec{}
	if grantFile != "" {
		spec, err = grant.ReadFile(grantFile)
		if err != nil {
			return exitUsage, &usageError{err: err}
		}
	}
	spec.Merge(flagSpec)

	claims, err := spec.Claims(env.clock.Now())
	if err != nil {
		return exitUsage, usagef("invalid grant: %v", err)
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

	data, err := key.Mint(claims)
	if err != nil {
		return exitClosed, err
	}
	token, err := capability.Parse(data)
	if err != nil {
		return exitClosed, fmt.Errorf("minted token does not parse: %w", err)
	}

	fmt.Fprintln(env.stdout, capability.EncodeText(data))
	logger.Info("minted token",
		"id", token.ID,
		"facts", len(claims.Authority.Facts),
		"checks", len(claims.Authority.Checks),
		"expires_at", token.ExpiresAt(),
	)
	return exitOpened, nil
}
