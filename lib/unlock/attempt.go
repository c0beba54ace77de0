// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unlock

import (
	"context"
	"crypto/ed25519"

	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/roompolicy"
)

// Attempt verifies one submission. A nil return opens the door; any
// error keeps it closed. Run may block; the machine calls it on its
// own goroutine and cancels ctx if the attempt times out.
type Attempt interface {
	Run(ctx context.Context, submission Submission) error
}

// AttemptFunc adapts a function to Attempt.
type AttemptFunc func(ctx context.Context, submission Submission) error

// Run calls f.
func (f AttemptFunc) Run(ctx context.Context, submission Submission) error {
	return f(ctx, submission)
}

// PublicKeySource supplies the authority public key. *authority.KeyPair
// implements it.
type PublicKeySource interface {
	PublicKey() ed25519.PublicKey
}

// TokenAttempt verifies submissions as capability tokens.
type TokenAttempt struct {
	// Authority holds the key tokens must be signed with.
	Authority PublicKeySource

	// Policy builds the per-room policy. The zero value asserts
	// roompolicy.DefaultOwner.
	Policy roompolicy.Builder

	// Verifier carries the clock and revocation list. Nil uses the
	// zero Verifier.
	Verifier *capability.Verifier
}

// Run decodes the token text, builds the policy for the submitted room
// and the open operation, and verifies.
func (a *TokenAttempt) Run(ctx context.Context, submission Submission) error {
	token, err := capability.ParseText(submission.Token)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	policy := a.Policy.Build(submission.RoomID, roompolicy.OperationOpen)

	verifier := a.Verifier
	if verifier == nil {
		verifier = &capability.Verifier{}
	}
	return verifier.Verify(token, a.Authority.PublicKey(), policy)
}
