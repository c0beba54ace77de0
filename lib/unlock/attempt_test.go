// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package unlock

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/clock"
	"github.com/bureau-foundation/unlock/lib/roompolicy"
)

type staticKey ed25519.PublicKey

func (k staticKey) PublicKey() ed25519.PublicKey { return ed25519.PublicKey(k) }

func testKey(t *testing.T, fill byte) ed25519.PrivateKey {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for index := range seed {
		seed[index] = fill
	}
	return ed25519.NewKeyFromSeed(seed)
}

func mintText(t *testing.T, key ed25519.PrivateKey, claims capability.Claims) string {
	t.Helper()
	token, err := capability.Mint(key, claims)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return capability.EncodeText(token)
}

func grantClaims(roomID string) capability.Claims {
	return capability.Claims{
		Authority: capability.Block{
			Facts: []capability.Atom{roompolicy.Grant(roomID, roompolicy.OperationOpen)},
		},
		IssuedAt: epoch.Unix(),
	}
}

func TestTokenAttempt(t *testing.T) {
	key := testKey(t, 0x11)
	public := staticKey(key.Public().(ed25519.PublicKey))
	valid := mintText(t, key, grantClaims("101"))

	expiring := grantClaims("101")
	expiring.ExpiresAt = epoch.Add(time.Hour).Unix()
	expiringText := mintText(t, key, expiring)

	revokedText := mintText(t, key, grantClaims("101"))
	revokedToken, err := capability.ParseText(revokedText)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}

	fake := clock.Fake(epoch.Add(2 * time.Hour))
	tests := []struct {
		name     string
		attempt  *TokenAttempt
		roomID   string
		token    string
		wantErr  error
		wantOpen bool
	}{
		{
			name:     "granted room",
			attempt:  &TokenAttempt{Authority: public},
			roomID:   "101",
			token:    valid,
			wantOpen: true,
		},
		{
			name:    "other room",
			attempt: &TokenAttempt{Authority: public},
			roomID:  "102",
			token:   valid,
			wantErr: capability.ErrChecksFailed,
		},
		{
			name:    "other authority",
			attempt: &TokenAttempt{Authority: staticKey(testKey(t, 0x22).Public().(ed25519.PublicKey))},
			roomID:  "101",
			token:   valid,
			wantErr: capability.ErrInvalidSignature,
		},
		{
			name:    "not base64",
			attempt: &TokenAttempt{Authority: public},
			roomID:  "101",
			token:   "not a token!",
			wantErr: capability.ErrInvalidEncoding,
		},
		{
			name:    "base64 but not a token",
			attempt: &TokenAttempt{Authority: public},
			roomID:  "101",
			token:   capability.EncodeText([]byte("hello")),
			wantErr: capability.ErrMalformedToken,
		},
		{
			name:    "expired",
			attempt: &TokenAttempt{Authority: public, Verifier: &capability.Verifier{Clock: fake}},
			roomID:  "101",
			token:   expiringText,
			wantErr: capability.ErrTokenExpired,
		},
		{
			name: "revoked",
			attempt: &TokenAttempt{
				Authority: public,
				Verifier:  &capability.Verifier{Revoked: capability.NewBlacklist(revokedToken.ID)},
			},
			roomID:  "101",
			token:   revokedText,
			wantErr: capability.ErrTokenRevoked,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.attempt.Run(context.Background(), Submission{RoomID: test.roomID, Token: test.token})
			if test.wantOpen {
				if err != nil {
					t.Fatalf("Run: %v", err)
				}
				return
			}
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Run = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestTokenAttempt_CustomOwner(t *testing.T) {
	key := testKey(t, 0x33)
	claims := grantClaims("lab")
	// Only tokens naming bob as the owner may be used.
	check, err := capability.ParseRule(`owned($room) <- owner(#ambient, #bob, $room)`)
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	claims.Authority.Checks = []capability.Rule{check}
	text := mintText(t, key, claims)
	public := staticKey(key.Public().(ed25519.PublicKey))

	alice := &TokenAttempt{Authority: public}
	if err := alice.Run(context.Background(), Submission{RoomID: "lab", Token: text}); !errors.Is(err, capability.ErrChecksFailed) {
		t.Errorf("Run with default owner = %v, want ErrChecksFailed", err)
	}

	bob := &TokenAttempt{Authority: public, Policy: roompolicy.Builder{Owner: "bob"}}
	if err := bob.Run(context.Background(), Submission{RoomID: "lab", Token: text}); err != nil {
		t.Errorf("Run with owner bob: %v", err)
	}
}

// End to end through the machine with a real token engine.
func TestMachine_WithTokenAttempt(t *testing.T) {
	key := testKey(t, 0x44)
	text := mintText(t, key, grantClaims("101"))
	fake := clock.Fake(epoch)
	attempt := &TokenAttempt{
		Authority: staticKey(key.Public().(ed25519.PublicKey)),
		Verifier:  &capability.Verifier{Clock: fake},
	}
	machine := New(attempt, WithClock(fake))

	if err := machine.Submit("102", text); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	fake.WaitForTimers(1)
	fake.Advance(DefaultDisplayDelay)
	closed, err := machine.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if closed.Status != StateError || closed.Message != "Door still Closed." {
		t.Fatalf("wrong room settled as %+v", closed)
	}
	var checkErr *capability.CheckError
	if !errors.As(closed.Reason, &checkErr) {
		t.Fatalf("Reason = %v, want *capability.CheckError", closed.Reason)
	}

	if err := machine.Submit("101", text); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	fake.WaitForTimers(1)
	fake.Advance(DefaultDisplayDelay)
	opened, err := machine.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if opened.Status != StateSuccess || opened.Message != "Door Opened." {
		t.Fatalf("granted room settled as %+v", opened)
	}
}
