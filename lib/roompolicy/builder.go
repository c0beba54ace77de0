// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roompolicy

import "github.com/bureau-foundation/unlock/lib/capability"

const (
	// DefaultOwner is the principal asserted as the ambient owner of
	// every room.
	DefaultOwner = "alice"

	// OperationOpen is the only operation the unlock client asks for.
	OperationOpen = "open"
)

// Builder builds room policies for one owner principal.
type Builder struct {
	// Owner is asserted in owner(#ambient, #<Owner>, room). Empty
	// means DefaultOwner.
	Owner string
}

// Build returns the policy for performing operation on roomID.
func (b Builder) Build(roomID, operation string) capability.Policy {
	owner := b.Owner
	if owner == "" {
		owner = DefaultOwner
	}

	return capability.Policy{
		Facts: []capability.Atom{
			capability.Fact("owner",
				capability.Symbol(capability.SymbolAmbient),
				capability.Symbol(owner),
				capability.String(roomID)),
		},
		Checks: []capability.Rule{{
			Head: capability.Fact("right", capability.Symbol("right")),
			Body: []capability.Atom{
				capability.Fact("right",
					capability.Symbol(capability.SymbolAuthority),
					capability.String(roomID),
					capability.Symbol(operation)),
			},
		}},
		Operation: operation,
		Resource:  roomID,
	}
}

// Build is Builder{}.Build.
func Build(roomID, operation string) capability.Policy {
	return Builder{}.Build(roomID, operation)
}

// Grant returns the authority fact that satisfies the check Build
// produces for the same room and operation. Issuers use it so that
// minting and verifying agree on the fact's shape.
func Grant(roomID, operation string) capability.Atom {
	return capability.Fact("right",
		capability.Symbol(capability.SymbolAuthority),
		capability.String(roomID),
		capability.Symbol(operation))
}
