// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the unlock
// client.
//
// Configuration is loaded from a single file specified by either the
// BUREAU_UNLOCK_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no file search.
//
// The file may carry environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production is stricter: an inline
// authority.private_key is rejected by [Config.Validate], and a missing
// unlock.attempt_timeout defaults to [ProductionAttemptTimeout].
//
// ${HOME} and ${VAR:-default} patterns are expanded in path and key
// fields after loading.
//
// [Config.LoadAuthority] resolves the configured key source into an
// [authority.KeyPair]; [Config.Revocations] builds the revocation list.
package config
