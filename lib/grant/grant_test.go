// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grant

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/roompolicy"
	"github.com/bureau-foundation/unlock/lib/testutil"
)

var issued = time.Unix(1_700_000_000, 0)

const sample = `{
  // Rooms the holder may open.
  "rooms": ["101", "lab"],
  "ttl": "24h",
  /* Only usable in rooms alice owns. */
  "checks": [
    "ok($r) <- resource(#ambient, $r), owner(#ambient, #alice, $r)",
  ],
}`

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Join(spec.Rooms, ",") != "101,lab" {
		t.Errorf("Rooms = %v", spec.Rooms)
	}
	if spec.TTL != "24h" || len(spec.Checks) != 1 {
		t.Errorf("spec = %+v", spec)
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte(`{"room": "101"}`)); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestReadFile(t *testing.T) {
	spec, err := ReadFile(testutil.WriteFile(t, "grant.jsonc", []byte(sample)))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(spec.Rooms) != 2 {
		t.Errorf("Rooms = %v", spec.Rooms)
	}
}

func TestClaims(t *testing.T) {
	spec, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	claims, err := spec.Claims(issued)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}

	if len(claims.Authority.Facts) != 2 {
		t.Fatalf("facts = %v, want one per room", claims.Authority.Facts)
	}
	if claims.Authority.Facts[0].String() != roompolicy.Grant("101", "open").String() {
		t.Errorf("first fact = %s", claims.Authority.Facts[0])
	}
	if claims.IssuedAt != issued.Unix() || claims.ExpiresAt != issued.Add(24*time.Hour).Unix() {
		t.Errorf("issued %d expires %d", claims.IssuedAt, claims.ExpiresAt)
	}

	// The claims mint into a token that opens both rooms.
	seed := make([]byte, ed25519.SeedSize)
	key := ed25519.NewKeyFromSeed(seed)
	data, err := capability.Mint(key, claims)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	token, err := capability.Parse(data)
	if err != nil {
		t.Fatalf("Parse token: %v", err)
	}
	public := key.Public().(ed25519.PublicKey)
	verifier := capability.Verifier{}
	for _, room := range []string{"101", "lab"} {
		if err := verifier.Verify(token, public, roompolicy.Build(room, "open")); err != nil {
			t.Errorf("room %s: %v", room, err)
		}
	}
	if err := verifier.Verify(token, public, roompolicy.Build("102", "open")); !errors.Is(err, capability.ErrChecksFailed) {
		t.Errorf("room 102: %v, want ErrChecksFailed", err)
	}
}

func TestClaims_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want string
	}{
		{"nothing granted", Spec{}, "no authority facts"},
		{"empty room", Spec{Rooms: []string{""}}, "empty room"},
		{"bad fact", Spec{Rooms: []string{"1"}, Facts: []string{"right(#ambient)"}}, "fact"},
		{"bad rule", Spec{Rooms: []string{"1"}, Rules: []string{"x($a) <-"}}, "rule"},
		{"bad check", Spec{Rooms: []string{"1"}, Checks: []string{"nope"}}, "check"},
		{"bad ttl", Spec{Rooms: []string{"1"}, TTL: "forever"}, "ttl"},
		{"tiny ttl", Spec{Rooms: []string{"1"}, TTL: "10ms"}, "shorter than one second"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.spec.Claims(issued)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Fatalf("Claims = %v, want error containing %q", err, test.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	spec := Spec{Rooms: []string{"101"}, TTL: "1h"}
	spec.Merge(Spec{Rooms: []string{"102"}, Operations: []string{"open"}})
	if strings.Join(spec.Rooms, ",") != "101,102" || spec.TTL != "1h" {
		t.Errorf("after merge without ttl: %+v", spec)
	}
	spec.Merge(Spec{TTL: "2h"})
	if spec.TTL != "2h" {
		t.Errorf("TTL = %s, want 2h", spec.TTL)
	}
}
