// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"fmt"
	"strconv"
	"strings"
)

// TermKind distinguishes the three kinds of term.
type TermKind uint8

const (
	// TermSymbol is an interned name such as #authority or #open.
	TermSymbol TermKind = 1

	// TermString is an arbitrary string such as a room identifier.
	TermString TermKind = 2

	// TermVariable is a rule variable such as $room. Variables never
	// appear in facts.
	TermVariable TermKind = 3
)

// Well-known symbols.
const (
	SymbolAuthority = "authority"
	SymbolAmbient   = "ambient"
)

// Term is one argument of an atom.
type Term struct {
	Kind  TermKind `cbor:"1,keyasint"`
	Value string   `cbor:"2,keyasint"`
}

// Symbol returns a symbol term.
func Symbol(name string) Term { return Term{Kind: TermSymbol, Value: name} }

// String returns a string term.
func String(value string) Term { return Term{Kind: TermString, Value: value} }

// Variable returns a variable term.
func Variable(name string) Term { return Term{Kind: TermVariable, Value: name} }

// IsVariable reports whether the term is a variable.
func (t Term) IsVariable() bool { return t.Kind == TermVariable }

// String renders the term in datalog notation.
func (t Term) String() string {
	switch t.Kind {
	case TermSymbol:
		return "#" + t.Value
	case TermString:
		return strconv.Quote(t.Value)
	case TermVariable:
		return "$" + t.Value
	default:
		return fmt.Sprintf("?%d(%q)", t.Kind, t.Value)
	}
}

func (t Term) validate() error {
	switch t.Kind {
	case TermString:
		return nil
	case TermSymbol, TermVariable:
		if !ValidName(t.Value) {
			return fmt.Errorf("invalid name %q in term %s", t.Value, t)
		}
		return nil
	default:
		return fmt.Errorf("unknown term kind %d", t.Kind)
	}
}

// ValidName reports whether name uses only the characters allowed in
// predicates, symbols and variable names: ASCII letters, digits and
// "_-.:".
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r == '-' || r == '.' || r == ':' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) < 0
}
