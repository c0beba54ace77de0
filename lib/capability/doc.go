// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capability implements signed capability tokens and the
// datalog check that decides whether a token authorizes an operation.
//
// A token is issued by an authority and carries facts about what the
// bearer may do, for example right(#authority, "101", #open). The
// verifier supplies its own ambient facts and checks (a [Policy]) and
// asks whether the union satisfies every check. Nothing is looked up
// remotely: the Ed25519 signature proves the facts came from the
// authority, and evaluation is local.
//
// # Wire format
//
// A token is raw bytes: a CBOR-encoded [Claims] payload followed by a
// 64-byte Ed25519 signature over the payload bytes.
//
//	[CBOR payload bytes] [64-byte Ed25519 signature]
//
// The split point is always len(token) - 64. Payloads are encoded with
// lib/codec's deterministic mode and decoded strictly: duplicate keys
// and unknown fields are malformed, never ignored. Tokens travel as
// standard base64 text ([EncodeText], [DecodeText]).
//
// # Terms, facts, rules
//
// Terms are symbols (#open), strings ("101") or variables ($room). A
// fact is a predicate over ground terms. A rule derives its head from
// a conjunction of body atoms, binding variables across atoms:
//
//	right(#right) <- right(#authority, "101", #open)
//	can_open($room) <- owner(#ambient, #alice, $room), right(#authority, $room, #open)
//
// Facts from the token must begin with #authority; facts from the
// policy must begin with #ambient. Token rules may not derive #ambient
// facts, so a token cannot forge what the verifier asserts about the
// request.
//
// # Checks
//
// A check is a rule used as a query: it passes if it produces at least
// one result against the saturated fact set. The token's own checks
// (attenuation) and the policy's checks must all pass.
package capability
