// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import "fmt"

// Policy is what the verifier brings to one verification: ambient
// facts it asserts about the request, checks the token must satisfy,
// and the operation and resource being attempted. A Policy is built
// per attempt and not retained.
type Policy struct {
	// Facts are ambient facts. Each must begin with #ambient.
	Facts []Atom

	// Checks must each produce at least one result.
	Checks []Rule

	// Operation, when set, is asserted as operation(#ambient, #<op>).
	Operation string

	// Resource, when set, is asserted as resource(#ambient, "<res>").
	Resource string
}

// ambientFacts returns the policy's facts plus the operation and
// resource assertions.
func (p Policy) ambientFacts() []Atom {
	facts := make([]Atom, 0, len(p.Facts)+2)
	facts = append(facts, p.Facts...)
	if p.Resource != "" {
		facts = append(facts, Fact("resource", Symbol(SymbolAmbient), String(p.Resource)))
	}
	if p.Operation != "" {
		facts = append(facts, Fact("operation", Symbol(SymbolAmbient), Symbol(p.Operation)))
	}
	return facts
}

func (p Policy) validate() error {
	for _, fact := range p.ambientFacts() {
		if err := fact.validateFact(SymbolAmbient); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
	}
	for _, check := range p.Checks {
		if err := check.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
	}
	return nil
}
