// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds key material outside the Go heap.
//
// The authority seed is the trust anchor for every unlock decision. A
// [Buffer] keeps it in an anonymous mmap region that is mlocked
// (never swapped), excluded from core dumps, and zeroed on Close. The
// garbage collector never sees the region, so it cannot leave copies
// behind.
//
// [ReadFromPath] loads a secret from a file or stdin straight into a
// Buffer and zeroes the heap copy it read through.
//
// Depends on golang.org/x/sys/unix only.
package secret
