// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by
// every package that puts bytes on the wire or under a signature.
//
// Capability tokens are CBOR-encoded payloads followed by an Ed25519
// signature. The signature covers the exact payload bytes, so the
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. Same
// logical token always produces identical bytes, which also makes the
// derived token ID stable.
//
// Decoding goes through UnmarshalStrict, which rejects duplicate map keys and fields the target
// struct does not declare. A token that decodes "successfully" while
// silently dropping a field would be verified against less than the
// issuer signed.
//
// # Struct Tag Rules
//
// Types that only ever appear as CBOR use `cbor` tags with integer
// keys (`cbor:"1,keyasint"`). Types that may also be printed as JSON
// (grant files) use `json` tags only; fxamacker/cbor
// reads `json` tags as a fallback. Never put both tags on one field.
package codec
