// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package unlock drives one room-unlock session: a user submits a room
// identifier and a capability token, the machine verifies the token in
// the background, and observers see the outcome.
//
// # States
//
//	idle ──SUBMIT(valid)──▶ loading ──verified──▶ success (final)
//	  │                       │ ▲
//	  └──SUBMIT(invalid)──▶ error ◀──rejected──┘
//	                          └──SUBMIT(valid)──┘
//
// The transitions live in one table ([transitions]); the machine scans
// it in order and takes the first row whose state, event and guard
// match. An event that matches no row changes nothing and notifies
// nobody. Submit reports why it was ignored: [ErrAttemptInFlight]
// while loading, [ErrFinished] after success, [ErrInvalidSubmission]
// when the guard fails (from idle the machine still moves to error,
// with no message).
//
// # Attempts
//
// Entering loading starts exactly one [Attempt] on its own goroutine.
// The production attempt ([TokenAttempt]) decodes the token, builds the
// room policy and verifies against the authority key. Whatever the
// attempt returns, the machine holds the result until a minimum display
// delay has passed since the attempt started, so the banner is visible
// even when verification is instant. An optional timeout settles the
// attempt as failed without waiting for the engine, and a panic in the
// engine is recovered as [ErrEngineFault]. The machine never stays in
// loading because of an engine problem.
//
// Every failure produces the same message. [Context.Reason] keeps the
// cause for callers that want to tell a malformed token from a denied
// one.
//
// # Observers
//
// Listeners registered with Subscribe receive every committed context,
// in commit order, in registration order. A listener may call Submit;
// the notification is queued and delivered after the current one.
package unlock
