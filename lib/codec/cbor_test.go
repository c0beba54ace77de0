// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleClaim mirrors the shape of a signed payload: integer keys,
// cbor tags only.
type sampleClaim struct {
	Room      string `cbor:"1,keyasint"`
	Operation string `cbor:"2,keyasint,omitempty"`
	ExpiresAt int64  `cbor:"3,keyasint"`
}

// sampleDualMessage uses json struct tags (the convention for types
// that serve both JSON and CBOR, relying on fxamacker's fallback).
type sampleDualMessage struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleClaim{Room: "101", Operation: "open", ExpiresAt: 1767225600}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleClaim
	if err := UnmarshalStrict(data, &decoded); err != nil {
		t.Fatalf("UnmarshalStrict: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Map iteration order is random; deterministic encoding must sort
	// keys regardless.
	value := map[string]int{"zulu": 1, "alpha": 2, "mike": 3, "bravo": 4}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for attempt := 0; attempt < 20; attempt++ {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestUnmarshalStrict_UnknownField(t *testing.T) {
	data, err := Marshal(map[int]any{1: "101", 9: "smuggled"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var strict sampleClaim
	if err := UnmarshalStrict(data, &strict); err == nil {
		t.Error("UnmarshalStrict accepted a payload with an unknown field")
	}
}

func TestUnmarshalStrict_DuplicateKey(t *testing.T) {
	// {1: "a", 1: "b"}
	data := []byte{0xa2, 0x01, 0x61, 'a', 0x01, 0x61, 'b'}

	var strict sampleClaim
	if err := UnmarshalStrict(data, &strict); err == nil {
		t.Error("UnmarshalStrict accepted a payload with a duplicate key")
	}
}

func TestJSONTagFallback(t *testing.T) {
	original := sampleDualMessage{Version: 2, Name: "grants"}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var asMap map[string]any
	if err := UnmarshalStrict(data, &asMap); err != nil {
		t.Fatalf("UnmarshalStrict into map: %v", err)
	}
	if _, ok := asMap["name"]; !ok {
		t.Errorf("json tag name not used as CBOR key: %v", asMap)
	}
}

func TestUnmarshalStrict_InvalidCBOR(t *testing.T) {
	var decoded sampleClaim
	if err := UnmarshalStrict([]byte{0xff, 0xfe}, &decoded); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[int]string{1: "a"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if diagnostic != `{1: "a"}` {
		t.Errorf("Diagnose = %q, want {1: \"a\"}", diagnostic)
	}
}
