// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unlock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/unlock/lib/clock"
)

// DefaultDisplayDelay is the minimum time between starting an attempt
// and settling it.
const DefaultDisplayDelay = 2 * time.Second

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the clock used for the display delay and the attempt
// timeout. Tests pass a fake clock.
func WithClock(c clock.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithLogger sets the logger. Tokens are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// WithDisplayDelay sets the minimum display delay. Zero settles as soon
// as the attempt returns.
func WithDisplayDelay(delay time.Duration) Option {
	return func(m *Machine) { m.displayDelay = delay }
}

// WithTimeout bounds how long the machine waits for an attempt. Zero
// waits indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Machine) { m.timeout = timeout }
}

// Machine is one unlock session. Create with New. Safe for concurrent
// use.
type Machine struct {
	attempt      Attempt
	clock        clock.Clock
	logger       *slog.Logger
	displayDelay time.Duration
	timeout      time.Duration

	mu           sync.Mutex
	current      Context
	listeners    []listener
	nextListener int

	// pending holds committed contexts not yet delivered. Only the
	// goroutine that set dispatching drains it.
	pending     []Context
	dispatching bool

	// changed is closed and replaced on every commit.
	changed chan struct{}
}

type listener struct {
	id int
	fn func(Context)
}

// New returns a machine in the idle state that verifies submissions
// with attempt.
func New(attempt Attempt, options ...Option) *Machine {
	m := &Machine{
		attempt:      attempt,
		clock:        clock.Real(),
		logger:       slog.New(slog.DiscardHandler),
		displayDelay: DefaultDisplayDelay,
		current:      Context{Status: StateIdle},
		changed:      make(chan struct{}),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Submit sends a SUBMIT event. It returns nil when an attempt started.
// Otherwise it returns why the event was refused: ErrInvalidSubmission
// (from idle the machine also moves to error), ErrAttemptInFlight or
// ErrFinished.
func (m *Machine) Submit(roomID, token string) error {
	row, err := m.send(event{kind: eventSubmit, submission: Submission{RoomID: roomID, Token: token}})
	if err != nil {
		return err
	}
	if row.to != StateLoading {
		return ErrInvalidSubmission
	}
	return nil
}

// Current returns a snapshot of the context.
func (m *Machine) Current() Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe registers fn to receive every committed context. The
// returned function removes the registration; a notification already
// being delivered may still reach fn.
func (m *Machine) Subscribe(fn func(Context)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextListener
	m.nextListener++
	m.listeners = append(m.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for index, entry := range m.listeners {
				if entry.id == id {
					m.listeners = append(m.listeners[:index:index], m.listeners[index+1:]...)
					return
				}
			}
		})
	}
}

// Wait blocks until the machine is not loading, then returns the
// context. Returns ctx.Err() if ctx is done first.
func (m *Machine) Wait(ctx context.Context) (Context, error) {
	for {
		m.mu.Lock()
		current := m.current
		changed := m.changed
		m.mu.Unlock()

		if current.Status != StateLoading {
			return current, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return current, ctx.Err()
		}
	}
}

// send applies ev and delivers the resulting notification. It returns
// the row taken, or the refusal error when no row matched.
func (m *Machine) send(ev event) (transition, error) {
	m.mu.Lock()
	row, ok := lookup(m.current, ev)
	if !ok {
		refusal := m.refusalLocked(ev)
		m.mu.Unlock()
		m.logger.Debug("unlock event ignored",
			"event", ev.kind.String(),
			"state", string(m.Current().Status),
			"reason", refusal,
		)
		return transition{}, refusal
	}

	from := m.current.Status
	next := m.current
	next.Status = row.to
	if row.action != nil {
		row.action(&next, ev)
	}
	m.current = next
	m.pending = append(m.pending, next)
	close(m.changed)
	m.changed = make(chan struct{})
	m.mu.Unlock()

	m.logger.Debug("unlock transition",
		"event", ev.kind.String(),
		"from", string(from),
		"to", string(next.Status),
		"attempt", next.Attempt,
	)
	if next.Status == StateLoading {
		go m.run(ev.submission, next.Attempt)
	}
	m.dispatch()
	return row, nil
}

func (m *Machine) refusalLocked(ev event) error {
	switch m.current.Status {
	case StateLoading:
		return ErrAttemptInFlight
	case StateSuccess:
		return ErrFinished
	}
	if ev.kind == eventSubmit {
		return ErrInvalidSubmission
	}
	return fmt.Errorf("unlock: %s has no transition from %s", ev.kind, m.current.Status)
}

// dispatch drains the notification queue. A call made while another
// goroutine (or an outer frame of this one, from inside a listener) is
// draining returns immediately; the drainer delivers the new entries
// after the one in progress.
func (m *Machine) dispatch() {
	m.mu.Lock()
	if m.dispatching {
		m.mu.Unlock()
		return
	}
	m.dispatching = true
	for len(m.pending) > 0 {
		next := m.pending[0]
		m.pending = m.pending[1:]
		listeners := append([]listener(nil), m.listeners...)
		m.mu.Unlock()
		for _, entry := range listeners {
			entry.fn(next)
		}
		m.mu.Lock()
	}
	m.dispatching = false
	m.mu.Unlock()
}

// run performs one attempt and settles it. The settle event is held
// until the display delay has elapsed since started.
func (m *Machine) run(submission Submission, attempt int) {
	started := m.clock.Now()
	err := m.await(submission)

	if remaining := m.displayDelay - m.clock.Now().Sub(started); remaining > 0 {
		m.clock.Sleep(remaining)
	}

	if err != nil {
		m.logger.Info("unlock attempt rejected",
			"room", submission.RoomID,
			"attempt", attempt,
			"error", err,
		)
		m.send(event{kind: eventRejected, err: err, attempt: attempt})
		return
	}
	m.logger.Info("unlock attempt verified", "room", submission.RoomID, "attempt", attempt)
	m.send(event{kind: eventVerified, attempt: attempt})
}

// await runs the attempt on its own goroutine and returns its result,
// or ErrAttemptTimeout if the timeout fires first. On timeout the
// attempt's context is canceled and its eventual result discarded.
func (m *Machine) await(submission Submission) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- m.guarded(ctx, submission)
	}()

	if m.timeout <= 0 {
		return <-result
	}

	expired := make(chan struct{})
	timer := m.clock.AfterFunc(m.timeout, func() { close(expired) })
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-expired:
		return fmt.Errorf("%w after %s", ErrAttemptTimeout, m.timeout)
	}
}

// guarded calls the attempt, converting a panic into ErrEngineFault.
func (m *Machine) guarded(ctx context.Context, submission Submission) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrEngineFault, recovered)
		}
	}()
	return m.attempt.Run(ctx, submission)
}
