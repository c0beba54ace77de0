// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/bureau-foundation/unlock/lib/clock"
)

// Verifier checks tokens against policies. The zero value uses the
// real clock and no revocation list. A Verifier holds no per-call
// state and is safe for concurrent use.
type Verifier struct {
	// Clock supplies the time for expiry checks. Nil means the real
	// clock.
	Clock clock.Clock

	// Revoked, if set, rejects tokens whose ID it contains.
	Revoked *Blacklist
}

// Verify checks the token's signature against the authority public
// key, then its expiry and revocation status, then evaluates the
// token's rules together with the policy and requires every check from
// both to pass.
//
// Failures wrap ErrInvalidPublicKey, ErrInvalidSignature,
// ErrTokenExpired, ErrTokenRevoked, ErrInvalidPolicy,
// ErrEvaluationLimit or ErrChecksFailed (as a *CheckError).
func (v *Verifier) Verify(token *Token, publicKey ed25519.PublicKey, policy Policy) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrMalformedToken)
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrInvalidPublicKey, len(publicKey), ed25519.PublicKeySize)
	}
	if !ed25519.Verify(publicKey, token.payload, token.signature) {
		return ErrInvalidSignature
	}

	if token.Claims.ExpiresAt != 0 && !v.now().Before(token.ExpiresAt()) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, token.ExpiresAt().UTC().Format("2006-01-02T15:04:05Z"))
	}
	if v.Revoked != nil && v.Revoked.IsRevoked(token.ID) {
		return fmt.Errorf("%w: %s", ErrTokenRevoked, token.ID)
	}

	if err := policy.validate(); err != nil {
		return err
	}

	world := newFactSet(token.Claims.Authority.Facts, policy.ambientFacts())
	if err := world.saturate(token.Claims.Authority.Rules); err != nil {
		return err
	}

	failures := &CheckError{}
	runChecks(world.facts, OriginToken, token.Claims.Authority.Checks, failures)
	runChecks(world.facts, OriginPolicy, policy.Checks, failures)
	if len(failures.Failed) > 0 {
		return failures
	}
	return nil
}

func (v *Verifier) now() time.Time {
	if v.Clock == nil {
		return clock.Real().Now()
	}
	return v.Clock.Now()
}

// Verify is Verifier.Verify with the zero Verifier.
func Verify(token *Token, publicKey ed25519.PublicKey, policy Policy) error {
	var verifier Verifier
	return verifier.Verify(token, publicKey, policy)
}
