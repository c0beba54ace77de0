// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/unlock/lib/codec"
)

// signatureSize is the fixed size of an Ed25519 signature.
const signatureSize = ed25519.SignatureSize

// ClaimsVersion is the payload version written by Mint and the only
// version Parse accepts.
const ClaimsVersion = 1

// Errors returned by Parse, Verify and related functions.
var (
	ErrInvalidEncoding   = errors.New("capability: token text is not valid base64")
	ErrMalformedToken    = errors.New("capability: malformed token")
	ErrInvalidPublicKey  = errors.New("capability: invalid authority public key")
	ErrInvalidSignature  = errors.New("capability: invalid Ed25519 signature")
	ErrTokenExpired      = errors.New("capability: token has expired")
	ErrTokenRevoked      = errors.New("capability: token has been revoked")
	ErrInvalidPolicy     = errors.New("capability: invalid policy")
	ErrChecksFailed      = errors.New("capability: checks failed")
	ErrEvaluationLimit   = errors.New("capability: evaluation limit exceeded")
	ErrInvalidClaims     = errors.New("capability: invalid claims")
	ErrNoAuthorityFacts  = errors.New("capability: token carries no authority facts")
	errUnsupportedClaims = errors.New("unsupported claims version")
)

// Block is a set of facts, derivation rules and checks.
type Block struct {
	// Facts are what the authority grants. Each must begin with
	// #authority.
	Facts []Atom `cbor:"1,keyasint,omitempty"`

	// Rules derive further facts during verification. A rule may
	// not derive an #ambient fact.
	Rules []Rule `cbor:"2,keyasint,omitempty"`

	// Checks restrict where the token can be used. Each must pass
	// for verification to succeed.
	Checks []Rule `cbor:"3,keyasint,omitempty"`
}

// Claims is the CBOR-encoded payload of a capability token.
type Claims struct {
	Version int `cbor:"1,keyasint"`

	// Authority is the block signed by the authority key.
	Authority Block `cbor:"2,keyasint"`

	// IssuedAt is a Unix timestamp (seconds).
	IssuedAt int64 `cbor:"3,keyasint"`

	// ExpiresAt is a Unix timestamp (seconds) after which the token
	// is rejected. Zero means the token does not expire.
	ExpiresAt int64 `cbor:"4,keyasint,omitempty"`
}

// Validate checks the structural rules every token must follow.
func (c *Claims) Validate() error {
	if c.Version != ClaimsVersion {
		return fmt.Errorf("%w %d", errUnsupportedClaims, c.Version)
	}
	if len(c.Authority.Facts) == 0 {
		return ErrNoAuthorityFacts
	}
	for _, fact := range c.Authority.Facts {
		if err := fact.validateFact(SymbolAuthority); err != nil {
			return err
		}
	}
	for _, rule := range c.Authority.Rules {
		if err := rule.validate(); err != nil {
			return err
		}
		if rule.Head.Scope() == SymbolAmbient {
			return fmt.Errorf("rule %s derives an #ambient fact", rule)
		}
	}
	for _, check := range c.Authority.Checks {
		if err := check.validate(); err != nil {
			return err
		}
	}
	if c.ExpiresAt != 0 && c.ExpiresAt <= c.IssuedAt {
		return fmt.Errorf("expires_at %d is not after issued_at %d", c.ExpiresAt, c.IssuedAt)
	}
	return nil
}

// Token is a parsed but not yet verified capability token. Parse does
// not check the signature; Verify does.
type Token struct {
	Claims Claims

	// ID identifies the token for revocation: the first 16 bytes of
	// the BLAKE3 hash of the payload, hex-encoded.
	ID string

	payload   []byte
	signature []byte
}

// ExpiresAt returns the expiry time, or the zero time if the token
// does not expire.
func (t *Token) ExpiresAt() time.Time {
	if t.Claims.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(t.Claims.ExpiresAt, 0)
}

// Mint validates claims, signs them with the authority's private key
// and returns the wire-format bytes. Version is set to ClaimsVersion.
func Mint(privateKey ed25519.PrivateKey, claims Claims) ([]byte, error) {
	claims.Version = ClaimsVersion
	if err := claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	payload, err := codec.Marshal(&claims)
	if err != nil {
		return nil, fmt.Errorf("capability: encoding token payload: %w", err)
	}

	signature := ed25519.Sign(privateKey, payload)

	result := make([]byte, len(payload)+signatureSize)
	copy(result, payload)
	copy(result[len(payload):], signature)
	return result, nil
}

// Parse splits token bytes into payload and signature and decodes the
// payload. Every failure wraps ErrMalformedToken. The signature is not
// checked; pass the result to Verify.
func Parse(data []byte) (*Token, error) {
	if len(data) <= signatureSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a signature", ErrMalformedToken, len(data))
	}

	splitPoint := len(data) - signatureSize
	token := &Token{
		payload:   append([]byte(nil), data[:splitPoint]...),
		signature: append([]byte(nil), data[splitPoint:]...),
	}

	if err := codec.UnmarshalStrict(token.payload, &token.Claims); err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", ErrMalformedToken, err)
	}
	if err := token.Claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	sum := blake3.Sum256(token.payload)
	token.ID = hex.EncodeToString(sum[:16])
	return token, nil
}

// Payload returns a copy of the signed payload bytes.
func (t *Token) Payload() []byte {
	return append([]byte(nil), t.payload...)
}
