// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAtom parses datalog notation such as
//
//	right(#authority, "101", #open)
//
// The result is validated but may contain variables.
func ParseAtom(text string) (Atom, error) {
	p := &textParser{input: text}
	atom, err := p.atom()
	if err != nil {
		return Atom{}, err
	}
	if err := p.end(); err != nil {
		return Atom{}, err
	}
	return atom, atom.validate()
}

// ParseFact parses a ground atom scoped to scope (SymbolAuthority or
// SymbolAmbient).
func ParseFact(text, scope string) (Atom, error) {
	atom, err := ParseAtom(text)
	if err != nil {
		return Atom{}, err
	}
	return atom, atom.validateFact(scope)
}

// ParseRule parses a rule such as
//
//	right(#right) <- right(#authority, $room, #open), resource(#ambient, $room)
//
// ":-" is accepted in place of "<-".
func ParseRule(text string) (Rule, error) {
	p := &textParser{input: text}
	head, err := p.atom()
	if err != nil {
		return Rule{}, err
	}

	p.skipSpace()
	if !p.consume("<-") && !p.consume(":-") {
		return Rule{}, p.errorf("expected <- after rule head")
	}

	rule := Rule{Head: head}
	for {
		atom, err := p.atom()
		if err != nil {
			return Rule{}, err
		}
		rule.Body = append(rule.Body, atom)
		p.skipSpace()
		if !p.consume(",") {
			break
		}
	}
	if err := p.end(); err != nil {
		return Rule{}, err
	}
	return rule, rule.validate()
}

type textParser struct {
	input    string
	position int
}

func (p *textParser) errorf(format string, args ...any) error {
	return fmt.Errorf("capability: parsing %q at offset %d: %s", p.input, p.position, fmt.Sprintf(format, args...))
}

func (p *textParser) skipSpace() {
	for p.position < len(p.input) && strings.ContainsRune(" \t\r\n", rune(p.input[p.position])) {
		p.position++
	}
}

func (p *textParser) consume(literal string) bool {
	if strings.HasPrefix(p.input[p.position:], literal) {
		p.position += len(literal)
		return true
	}
	return false
}

func (p *textParser) end() error {
	p.skipSpace()
	if p.position != len(p.input) {
		return p.errorf("unexpected trailing input %q", p.input[p.position:])
	}
	return nil
}

func (p *textParser) name() (string, error) {
	start := p.position
	for p.position < len(p.input) && ValidName(p.input[p.position:p.position+1]) {
		p.position++
	}
	if start == p.position {
		return "", p.errorf("expected a name")
	}
	return p.input[start:p.position], nil
}

func (p *textParser) atom() (Atom, error) {
	p.skipSpace()
	predicate, err := p.name()
	if err != nil {
		return Atom{}, err
	}
	p.skipSpace()
	if !p.consume("(") {
		return Atom{}, p.errorf("expected ( after %s", predicate)
	}

	atom := Atom{Predicate: predicate}
	p.skipSpace()
	if p.consume(")") {
		return atom, nil
	}
	for {
		term, err := p.term()
		if err != nil {
			return Atom{}, err
		}
		atom.Terms = append(atom.Terms, term)
		p.skipSpace()
		if p.consume(")") {
			return atom, nil
		}
		if !p.consume(",") {
			return Atom{}, p.errorf("expected , or ) in %s", predicate)
		}
	}
}

func (p *textParser) term() (Term, error) {
	p.skipSpace()
	switch {
	case p.consume("#"):
		name, err := p.name()
		return Symbol(name), err
	case p.consume("$"):
		name, err := p.name()
		return Variable(name), err
	case strings.HasPrefix(p.input[p.position:], `"`):
		value, err := p.quoted()
		return String(value), err
	default:
		return Term{}, p.errorf("expected #symbol, $variable or \"string\"")
	}
}

// quoted reads a Go-syntax double-quoted string.
func (p *textParser) quoted() (string, error) {
	start := p.position
	p.position++
	for p.position < len(p.input) {
		switch p.input[p.position] {
		case '\\':
			p.position += 2
			continue
		case '"':
			p.position++
			value, err := strconv.Unquote(p.input[start:p.position])
			if err != nil {
				return "", p.errorf("bad string literal: %v", err)
			}
			return value, nil
		}
		p.position++
	}
	return "", p.errorf("unterminated string")
}
