// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import "testing"

func TestBlacklist(t *testing.T) {
	blacklist := NewBlacklist("first", "second", "first")

	if !blacklist.IsRevoked("first") || !blacklist.IsRevoked("second") {
		t.Fatal("revoked IDs not reported")
	}
	if blacklist.IsRevoked("other") {
		t.Error("unrevoked ID reported as revoked")
	}
	if blacklist.Len() != 2 {
		t.Errorf("Len = %d, want 2 (duplicates collapse)", blacklist.Len())
	}
}

func TestBlacklist_Empty(t *testing.T) {
	if NewBlacklist().IsRevoked("") {
		t.Error("empty blacklist reported a revocation")
	}
}
