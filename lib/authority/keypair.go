// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/sealed"
	"github.com/bureau-foundation/unlock/lib/secret"
)

// SeedSize is the length of the private key material in bytes.
const SeedSize = ed25519.SeedSize

// ErrInvalidSeed is returned for key material that is not exactly
// SeedSize bytes (2*SeedSize hex characters).
var ErrInvalidSeed = errors.New("authority: invalid private key seed")

// KeyPair is the authority's Ed25519 key pair. The caller must Close
// it.
type KeyPair struct {
	seed   *secret.Buffer
	public ed25519.PublicKey
}

// FromSeed builds a KeyPair from raw seed bytes. seed is zeroed.
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != SeedSize {
		secret.Zero(seed)
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidSeed, len(seed), SeedSize)
	}

	private := ed25519.NewKeyFromSeed(seed)
	public := append(ed25519.PublicKey(nil), private.Public().(ed25519.PublicKey)...)
	secret.Zero(private)

	protected, err := secret.NewFromBytes(seed)
	if err != nil {
		return nil, fmt.Errorf("authority: protecting seed: %w", err)
	}
	return &KeyPair{seed: protected, public: public}, nil
}

// FromHex builds a KeyPair from hex-encoded seed bytes. Surrounding
// whitespace is ignored.
func FromHex(text []byte) (*KeyPair, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) != 2*SeedSize {
		return nil, fmt.Errorf("%w: %d hex characters, want %d", ErrInvalidSeed, len(trimmed), 2*SeedSize)
	}

	seed := make([]byte, SeedSize)
	if _, err := hex.Decode(seed, trimmed); err != nil {
		secret.Zero(seed)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return FromSeed(seed)
}

// Generate creates a KeyPair from a fresh random seed.
func Generate() (*KeyPair, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("authority: generating seed: %w", err)
	}
	return FromSeed(seed)
}

// LoadFile reads a hex seed from path ("-" for stdin).
func LoadFile(path string) (*KeyPair, error) {
	buffer, err := secret.ReadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("authority: reading %s: %w", path, err)
	}
	defer buffer.Close()
	return FromHex(buffer.Bytes())
}

// LoadSealed decrypts an age-sealed hex seed at sealedPath with the
// identity file at identityPath.
func LoadSealed(sealedPath, identityPath string) (*KeyPair, error) {
	ciphertext, err := os.ReadFile(sealedPath)
	if err != nil {
		return nil, fmt.Errorf("authority: reading sealed key: %w", err)
	}
	identity, err := secret.ReadFromPath(identityPath)
	if err != nil {
		return nil, fmt.Errorf("authority: reading identity %s: %w", identityPath, err)
	}
	defer identity.Close()

	plaintext, err := sealed.Decrypt(ciphertext, identity)
	if err != nil {
		return nil, fmt.Errorf("authority: opening sealed key %s: %w", sealedPath, err)
	}
	defer plaintext.Close()
	return FromHex(plaintext.Bytes())
}

// PublicKey returns the authority public key.
func (k *KeyPair) PublicKey() ed25519.PublicKey {
	return k.public
}

// Mint signs claims with the authority key. The expanded private key
// is zeroed before Mint returns.
func (k *KeyPair) Mint(claims capability.Claims) ([]byte, error) {
	private := ed25519.NewKeyFromSeed(k.seed.Bytes())
	defer secret.Zero(private)
	return capability.Mint(private, claims)
}

// WriteSeedHex writes the hex seed to w. Used by keygen to hand the
// seed to the operator exactly once.
func (k *KeyPair) WriteSeedHex(w io.Writer) error {
	encoded := make([]byte, hex.EncodedLen(SeedSize))
	defer secret.Zero(encoded)
	hex.Encode(encoded, k.seed.Bytes())
	_, err := w.Write(encoded)
	return err
}

// Close releases the seed. Idempotent.
func (k *KeyPair) Close() error {
	return k.seed.Close()
}
