// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roompolicy builds the verification policy for unlocking a
// room.
//
// For room "101" and operation "open" the policy is:
//
//	owner(#ambient, #alice, "101")                      fact
//	right(#right) <- right(#authority, "101", #open)    check
//	resource(#ambient, "101"), operation(#ambient, #open)
//
// The check passes only if the token's authority block grants #open on
// exactly this room. Build is pure: identical inputs give structurally
// identical policies, and it never fails. Room identifiers are
// validated by the caller before a policy is built.
package roompolicy
