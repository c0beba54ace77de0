// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"fmt"
	"strings"
)

// Atom is a predicate applied to terms. A ground atom (no variables)
// is a fact.
type Atom struct {
	Predicate string `cbor:"1,keyasint"`
	Terms     []Term `cbor:"2,keyasint"`
}

// Fact builds a ground atom.
func Fact(predicate string, terms ...Term) Atom {
	return Atom{Predicate: predicate, Terms: terms}
}

// String renders the atom as predicate(term, ...).
func (a Atom) String() string {
	parts := make([]string, len(a.Terms))
	for index, term := range a.Terms {
		parts[index] = term.String()
	}
	return a.Predicate + "(" + strings.Join(parts, ", ") + ")"
}

// IsGround reports whether the atom contains no variables.
func (a Atom) IsGround() bool {
	for _, term := range a.Terms {
		if term.IsVariable() {
			return false
		}
	}
	return true
}

// Scope returns the first term's symbol name, or "" if the first term
// is not a symbol. Facts are scoped to #authority or #ambient.
func (a Atom) Scope() string {
	if len(a.Terms) == 0 || a.Terms[0].Kind != TermSymbol {
		return ""
	}
	return a.Terms[0].Value
}

func (a Atom) validate() error {
	if !ValidName(a.Predicate) {
		return fmt.Errorf("invalid predicate %q", a.Predicate)
	}
	for _, term := range a.Terms {
		if err := term.validate(); err != nil {
			return fmt.Errorf("%s: %w", a.Predicate, err)
		}
	}
	return nil
}

// validateFact checks that a is ground and scoped to scope.
func (a Atom) validateFact(scope string) error {
	if err := a.validate(); err != nil {
		return err
	}
	if !a.IsGround() {
		return fmt.Errorf("fact %s contains a variable", a)
	}
	if a.Scope() != scope {
		return fmt.Errorf("fact %s must begin with #%s", a, scope)
	}
	return nil
}

// Rule derives Head whenever every atom in Body matches a known fact
// under one consistent variable binding.
type Rule struct {
	Head Atom   `cbor:"1,keyasint"`
	Body []Atom `cbor:"2,keyasint"`
}

// String renders the rule as head <- body, body.
func (r Rule) String() string {
	parts := make([]string, len(r.Body))
	for index, atom := range r.Body {
		parts[index] = atom.String()
	}
	return r.Head.String() + " <- " + strings.Join(parts, ", ")
}

func (r Rule) validate() error {
	if err := r.Head.validate(); err != nil {
		return fmt.Errorf("rule head: %w", err)
	}
	if len(r.Body) == 0 {
		return fmt.Errorf("rule %s has an empty body", r.Head)
	}
	bound := make(map[string]bool)
	for _, atom := range r.Body {
		if err := atom.validate(); err != nil {
			return fmt.Errorf("rule body: %w", err)
		}
		for _, term := range atom.Terms {
			if term.IsVariable() {
				bound[term.Value] = true
			}
		}
	}
	for _, term := range r.Head.Terms {
		if term.IsVariable() && !bound[term.Value] {
			return fmt.Errorf("rule %s: head variable $%s does not appear in the body", r, term.Value)
		}
	}
	return nil
}
