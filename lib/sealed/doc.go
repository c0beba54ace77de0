// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts and decrypts the authority seed with age.
//
// An operator who does not want the seed in plaintext on disk seals it
// to an age X25519 recipient (bureau-unlock keygen --seal-to age1...)
// and configures the sealed file plus the identity that opens it.
// Sealed files are ASCII-armored so they survive copy and paste.
//
// Identities and decrypted plaintext are returned as *secret.Buffer
// values (mmap-backed, locked against swap, zeroed on close).
package sealed
