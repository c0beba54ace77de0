// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package authority holds the key pair that anchors every unlock
// decision.
//
// The private half is a 32-byte Ed25519 seed. Operators supply it as
// 64 hex characters, inline in configuration, in a file, or sealed
// with age. The seed is decoded straight into a secret.Buffer; the
// expanded private key exists on the heap only for the duration of a
// Mint call. The public key is derived once at load time and is what
// the unlock machine verifies against.
//
// Key rotation is out of scope: a KeyPair is immutable for the life
// of the process.
package authority
