// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unlock

import (
	"errors"
	"unicode/utf8"
)

// State is a machine state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateError   State = "error"
	StateSuccess State = "success"
)

// MaxRoomIDLength is the longest room identifier, in characters.
const MaxRoomIDLength = 255

// Errors reported by Submit and recorded in Context.Reason.
var (
	ErrInvalidSubmission = errors.New("unlock: room and token are required")
	ErrAttemptInFlight   = errors.New("unlock: an attempt is already in flight")
	ErrFinished          = errors.New("unlock: door already opened")
	ErrEngineFault       = errors.New("unlock: verification engine fault")
	ErrAttemptTimeout    = errors.New("unlock: verification timed out")
)

// Banner texts recorded when an attempt settles.
const (
	MessageOpened = "Door Opened."
	MessageClosed = "Door still Closed."
)

// Context is the observable state of a machine. Observers receive
// copies; only the machine mutates its own.
type Context struct {
	Status State

	// Message is empty until an attempt settles. An error status with
	// an empty message means the input was rejected before any
	// attempt.
	Message string

	// Reason is why the machine is in the error state:
	// ErrInvalidSubmission, or the error the attempt returned. Nil
	// otherwise.
	Reason error

	// Attempt counts attempts started, so observers can tell two
	// consecutive failures apart.
	Attempt int
}

// Submission is one SUBMIT event's payload.
type Submission struct {
	RoomID string
	Token  string
}

// Valid reports whether the submission passes the SUBMIT guard.
func (s Submission) Valid() bool {
	return s.RoomID != "" && utf8.RuneCountInString(s.RoomID) <= MaxRoomIDLength && s.Token != ""
}

type eventKind int

const (
	eventSubmit eventKind = iota
	eventVerified
	eventRejected
)

func (k eventKind) String() string {
	switch k {
	case eventSubmit:
		return "SUBMIT"
	case eventVerified:
		return "VERIFIED"
	case eventRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

type event struct {
	kind       eventKind
	submission Submission
	err        error

	// attempt identifies which attempt a VERIFIED or REJECTED event
	// settles.
	attempt int
}

// transition is one row of the table. A nil guard always passes; a nil
// action leaves the context as it is apart from Status.
type transition struct {
	from   State
	on     eventKind
	guard  func(Context, event) bool
	to     State
	action func(*Context, event)
}

var transitions = []transition{
	{from: StateIdle, on: eventSubmit, guard: validSubmission, to: StateLoading, action: beginAttempt},
	{from: StateIdle, on: eventSubmit, to: StateError, action: rejectInput},
	{from: StateError, on: eventSubmit, guard: validSubmission, to: StateLoading, action: beginAttempt},
	{from: StateLoading, on: eventVerified, guard: currentAttempt, to: StateSuccess, action: recordOpened},
	{from: StateLoading, on: eventRejected, guard: currentAttempt, to: StateError, action: recordClosed},
}

// lookup returns the first row matching the context and event.
func lookup(current Context, ev event) (transition, bool) {
	for _, row := range transitions {
		if row.from != current.Status || row.on != ev.kind {
			continue
		}
		if row.guard != nil && !row.guard(current, ev) {
			continue
		}
		return row, true
	}
	return transition{}, false
}

func validSubmission(_ Context, ev event) bool {
	return ev.submission.Valid()
}

func currentAttempt(current Context, ev event) bool {
	return ev.attempt == current.Attempt
}

func beginAttempt(context *Context, _ event) {
	context.Attempt++
}

func rejectInput(context *Context, _ event) {
	context.Reason = ErrInvalidSubmission
}

func recordOpened(context *Context, _ event) {
	context.Message = MessageOpened
	context.Reason = nil
}

func recordClosed(context *Context, ev event) {
	context.Message = MessageClosed
	context.Reason = ev.err
}
