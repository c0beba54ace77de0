// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive], [RequireSend] and [RequireClosed] wrap the select
// with a wall-clock fallback so a broken test fails instead of hanging.
// They are the only place tests use real timeouts; everything else
// runs on the fake clock from lib/clock. [RequireEmpty] asserts that
// nothing is waiting on a channel right now.
//
// [WriteFile] writes a private file into the test's temporary
// directory.
//
// All helpers call t.Fatalf on failure.
package testutil
