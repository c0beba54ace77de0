// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/codec"
)

// explainToken writes the token's ID, expiry and signed payload in CBOR
// diagnostic notation to w. The signature is not checked here; the
// attempt that follows does that.
func explainToken(w io.Writer, text string) {
	token, err := capability.ParseText(text)
	if err != nil {
		fmt.Fprintf(w, "token does not decode: %v\n", err)
		return
	}
	diagnostic, err := codec.Diagnose(token.Payload())
	if err != nil {
		fmt.Fprintf(w, "token %s: payload diagnostic failed: %v\n", token.ID, err)
		return
	}

	expires := "never"
	if expiresAt := token.ExpiresAt(); !expiresAt.IsZero() {
		expires = expiresAt.UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(w, "token:   %s\nexpires: %s\npayload: %s\n", token.ID, expires, diagnostic)
}
