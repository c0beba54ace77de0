// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/unlock/lib/clock"
	"github.com/bureau-foundation/unlock/lib/codec"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testKeypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return public, private
}

func rightFact(room string) Atom {
	return Fact("right", Symbol(SymbolAuthority), String(room), Symbol("open"))
}

func roomPolicy(room string) Policy {
	return Policy{
		Facts: []Atom{Fact("owner", Symbol(SymbolAmbient), Symbol("alice"), String(room))},
		Checks: []Rule{{
			Head: Fact("right", Symbol("right")),
			Body: []Atom{rightFact(room)},
		}},
		Operation: "open",
		Resource:  room,
	}
}

func mintParse(t *testing.T, private ed25519.PrivateKey, claims Claims) *Token {
	t.Helper()
	data, err := Mint(private, claims)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	token, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return token
}

func TestMintParseVerify(t *testing.T) {
	public, private := testKeypair(t)

	token := mintParse(t, private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
	})

	if token.Claims.Version != ClaimsVersion {
		t.Errorf("Version = %d, want %d", token.Claims.Version, ClaimsVersion)
	}
	if len(token.ID) != 32 {
		t.Errorf("ID = %q, want 32 hex characters", token.ID)
	}
	if len(token.Claims.Authority.Facts) != 1 || token.Claims.Authority.Facts[0].String() != rightFact("101").String() {
		t.Errorf("Facts = %v, want [%s]", token.Claims.Authority.Facts, rightFact("101"))
	}

	if err := Verify(token, public, roomPolicy("101")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_WrongRoom(t *testing.T) {
	public, private := testKeypair(t)
	token := mintParse(t, private, Claims{
		Authority: Block{Facts: []Atom{rightFact("202")}},
		IssuedAt:  epoch.Unix(),
	})

	err := Verify(token, public, roomPolicy("101"))
	if !errors.Is(err, ErrChecksFailed) {
		t.Fatalf("Verify = %v, want ErrChecksFailed", err)
	}
	var checkError *CheckError
	if !errors.As(err, &checkError) {
		t.Fatalf("error %T is not a *CheckError", err)
	}
	if len(checkError.Failed) != 1 || checkError.Failed[0].Origin != OriginPolicy {
		t.Errorf("Failed = %+v, want one policy check", checkError.Failed)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	public, private := testKeypair(t)
	data, err := Mint(private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// Swap the granted room without re-signing. Same length, so the
	// payload still decodes.
	forged := append([]byte(nil), data...)
	for index := 0; index+2 < len(forged)-signatureSize; index++ {
		if string(forged[index:index+3]) == "101" {
			forged[index+2] = '2'
		}
	}

	token, err := Parse(forged)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Verify(token, public, roomPolicy("102")); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify forged token = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	_, private := testKeypair(t)
	otherPublic, _ := testKeypair(t)
	token := mintParse(t, private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
	})

	if err := Verify(token, otherPublic, roomPolicy("101")); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Verify with wrong key = %v, want ErrInvalidSignature", err)
	}
}

func TestVerify_InvalidPublicKey(t *testing.T) {
	_, private := testKeypair(t)
	token := mintParse(t, private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
	})

	if err := Verify(token, ed25519.PublicKey{1, 2, 3}, roomPolicy("101")); !errors.Is(err, ErrInvalidPublicKey) {
		t.Errorf("Verify with short key = %v, want ErrInvalidPublicKey", err)
	}
}

func TestVerify_Expiry(t *testing.T) {
	public, private := testKeypair(t)
	token := mintParse(t, private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
		ExpiresAt: epoch.Add(time.Hour).Unix(),
	})

	fake := clock.Fake(epoch.Add(59 * time.Minute))
	verifier := &Verifier{Clock: fake}
	if err := verifier.Verify(token, public, roomPolicy("101")); err != nil {
		t.Fatalf("Verify before expiry: %v", err)
	}

	fake.Advance(time.Minute)
	if err := verifier.Verify(token, public, roomPolicy("101")); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify at expiry = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_Revoked(t *testing.T) {
	public, private := testKeypair(t)
	token := mintParse(t, private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
	})

	verifier := &Verifier{Revoked: NewBlacklist(token.ID)}
	if err := verifier.Verify(token, public, roomPolicy("101")); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Verify revoked token = %v, want ErrTokenRevoked", err)
	}
}

func TestVerify_TokenCheckAttenuates(t *testing.T) {
	public, private := testKeypair(t)

	// Grants every room but only for the #open operation.
	onlyOpen, err := ParseRule(`check(#open) <- operation(#ambient, #open)`)
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	token := mintParse(t, private, Claims{
		Authority: Block{
			Facts:  []Atom{rightFact("101")},
			Checks: []Rule{onlyOpen},
		},
		IssuedAt: epoch.Unix(),
	})

	if err := Verify(token, public, roomPolicy("101")); err != nil {
		t.Fatalf("Verify open: %v", err)
	}

	lock := roomPolicy("101")
	lock.Operation = "lock"
	err = Verify(token, public, lock)
	var checkError *CheckError
	if !errors.As(err, &checkError) {
		t.Fatalf("Verify lock = %v, want *CheckError", err)
	}
	if checkError.Failed[0].Origin != OriginToken {
		t.Errorf("failed check origin = %s, want token", checkError.Failed[0].Origin)
	}
}

func TestVerify_TokenRulesDerive(t *testing.T) {
	public, private := testKeypair(t)

	// The token grants a floor; a rule turns it into per-room rights.
	floorRule, err := ParseRule(`right(#authority, $room, #open) <- floor(#authority, "1"), resource(#ambient, $room)`)
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	token := mintParse(t, private, Claims{
		Authority: Block{
			Facts: []Atom{Fact("floor", Symbol(SymbolAuthority), String("1"))},
			Rules: []Rule{floorRule},
		},
		IssuedAt: epoch.Unix(),
	})

	if err := Verify(token, public, roomPolicy("101")); err != nil {
		t.Errorf("Verify derived right: %v", err)
	}
}

func TestVerify_InvalidPolicy(t *testing.T) {
	public, private := testKeypair(t)
	token := mintParse(t, private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
	})

	// A policy fact scoped to #authority would let the verifier forge
	// grants.
	policy := roomPolicy("101")
	policy.Facts = append(policy.Facts, rightFact("101"))
	if err := Verify(token, public, policy); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("Verify = %v, want ErrInvalidPolicy", err)
	}
}

func TestMint_RejectsInvalidClaims(t *testing.T) {
	_, private := testKeypair(t)

	ambientHead, err := ParseRule(`owner(#ambient, #mallory, $room) <- right(#authority, $room, #open)`)
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}

	tests := []struct {
		name   string
		claims Claims
	}{
		{"no facts", Claims{IssuedAt: epoch.Unix()}},
		{"ambient fact", Claims{
			Authority: Block{Facts: []Atom{Fact("owner", Symbol(SymbolAmbient), String("101"))}},
		}},
		{"variable in fact", Claims{
			Authority: Block{Facts: []Atom{Fact("right", Symbol(SymbolAuthority), Variable("room"))}},
		}},
		{"rule derives ambient", Claims{
			Authority: Block{Facts: []Atom{rightFact("101")}, Rules: []Rule{ambientHead}},
		}},
		{"expires before issue", Claims{
			Authority: Block{Facts: []Atom{rightFact("101")}},
			IssuedAt:  epoch.Unix(),
			ExpiresAt: epoch.Add(-time.Second).Unix(),
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Mint(private, test.claims); !errors.Is(err, ErrInvalidClaims) {
				t.Errorf("Mint = %v, want ErrInvalidClaims", err)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, private := testKeypair(t)

	// A payload with an undeclared field, correctly signed.
	payload, err := codec.Marshal(map[int]any{1: ClaimsVersion, 9: "extra"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	unknownField := append(payload, ed25519.Sign(private, payload)...)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"signature only", make([]byte, signatureSize)},
		{"garbage payload", append([]byte{0xff, 0xff, 0xff}, make([]byte, signatureSize)...)},
		{"unknown field", unknownField},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Parse(test.data); !errors.Is(err, ErrMalformedToken) {
				t.Errorf("Parse = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestParse_SameMalformedInputSameError(t *testing.T) {
	garbage := []byte("not a token at all, but long enough to hold a sixty-four byte signature")
	_, first := Parse(garbage)
	_, second := Parse(garbage)
	if first == nil || second == nil {
		t.Fatal("Parse accepted garbage")
	}
	if first.Error() != second.Error() {
		t.Errorf("errors differ: %q vs %q", first, second)
	}
}

func TestTokenID_StableAcrossParses(t *testing.T) {
	_, private := testKeypair(t)
	data, err := Mint(private, Claims{
		Authority: Block{Facts: []Atom{rightFact("101")}},
		IssuedAt:  epoch.Unix(),
	})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	first, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ: %s vs %s", first.ID, second.ID)
	}
}
