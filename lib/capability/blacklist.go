// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

// Blacklist is a set of revoked token IDs. It is built once from
// configuration and never modified, so concurrent reads need no lock.
type Blacklist struct {
	entries map[string]struct{}
}

// NewBlacklist returns a Blacklist holding ids.
func NewBlacklist(ids ...string) *Blacklist {
	blacklist := &Blacklist{entries: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		blacklist.entries[id] = struct{}{}
	}
	return blacklist
}

// IsRevoked reports whether tokenID has been revoked.
func (b *Blacklist) IsRevoked(tokenID string) bool {
	_, exists := b.entries[tokenID]
	return exists
}

// Len returns the number of distinct revoked IDs.
func (b *Blacklist) Len() int {
	return len(b.entries)
}
