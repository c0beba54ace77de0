// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// The unlock machine holds its success and failure banners for a
// minimum display delay and may bound each attempt with a timeout.
// Both are waits on a Clock rather than on the time package, so tests
// drive them deterministically:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	machine := unlock.New(attempt, unlock.WithClock(fake))
//	machine.Submit("101", token)
//	fake.WaitForTimers(1)        // attempt registered its display wait
//	fake.Advance(2 * time.Second) // banner floor elapses
//
// Production code passes Real().
//
// WaitForTimers exists because the goroutine that registers a timer
// and the test that advances the clock race; blocking until the timer
// is registered removes the race without sleeping.
package clock
