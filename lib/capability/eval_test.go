// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"errors"
	"testing"
)

func mustRule(t *testing.T, text string) Rule {
	t.Helper()
	rule, err := ParseRule(text)
	if err != nil {
		t.Fatalf("ParseRule(%q): %v", text, err)
	}
	return rule
}

func mustAtom(t *testing.T, text string) Atom {
	t.Helper()
	atom, err := ParseAtom(text)
	if err != nil {
		t.Fatalf("ParseAtom(%q): %v", text, err)
	}
	return atom
}

func TestQuery_JoinsOnSharedVariables(t *testing.T) {
	facts := []Atom{
		mustAtom(t, `owner(#ambient, #alice, "101")`),
		mustAtom(t, `owner(#ambient, #alice, "303")`),
		mustAtom(t, `right(#authority, "101", #open)`),
		mustAtom(t, `right(#authority, "202", #open)`),
	}
	rule := mustRule(t, `can_open($room) <- owner(#ambient, #alice, $room), right(#authority, $room, #open)`)

	results := query(rule, facts)
	if len(results) != 1 {
		t.Fatalf("query returned %v, want exactly can_open(\"101\")", results)
	}
	if want := mustAtom(t, `can_open("101")`); results[0].String() != want.String() {
		t.Errorf("result = %s, want %s", results[0], want)
	}
}

func TestQuery_RepeatedVariableInOneAtom(t *testing.T) {
	facts := []Atom{
		mustAtom(t, `pair(#authority, "a", "a")`),
		mustAtom(t, `pair(#authority, "a", "b")`),
	}
	rule := mustRule(t, `same($x) <- pair(#authority, $x, $x)`)

	results := query(rule, facts)
	if len(results) != 1 || results[0].String() != `same("a")` {
		t.Errorf("query returned %v, want [same(\"a\")]", results)
	}
}

func TestQuery_ArityAndPredicateMustMatch(t *testing.T) {
	facts := []Atom{
		mustAtom(t, `right(#authority, "101")`),
		mustAtom(t, `grant(#authority, "101", #open)`),
	}
	rule := mustRule(t, `ok(#yes) <- right(#authority, "101", #open)`)
	if results := query(rule, facts); len(results) != 0 {
		t.Errorf("query returned %v, want nothing", results)
	}
}

func TestSaturate_Transitive(t *testing.T) {
	world := newFactSet([]Atom{
		mustAtom(t, `contains(#authority, "building", "floor1")`),
		mustAtom(t, `contains(#authority, "floor1", "101")`),
		mustAtom(t, `contains(#authority, "101", "closet")`),
	})
	rules := []Rule{
		mustRule(t, `within(#authority, $a, $b) <- contains(#authority, $a, $b)`),
		mustRule(t, `within(#authority, $a, $c) <- within(#authority, $a, $b), contains(#authority, $b, $c)`),
	}

	if err := world.saturate(rules); err != nil {
		t.Fatalf("saturate: %v", err)
	}
	if !world.contains(mustAtom(t, `within(#authority, "building", "closet")`)) {
		t.Error("transitive fact within(building, closet) not derived")
	}
	if world.contains(mustAtom(t, `within(#authority, "closet", "building")`)) {
		t.Error("derived a fact in the wrong direction")
	}
}

func TestSaturate_FactLimit(t *testing.T) {
	// Every derived fact feeds the next round; the square grows
	// without bound.
	var seeds []Atom
	for _, room := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		seeds = append(seeds, Fact("room", Symbol(SymbolAuthority), String(room)))
	}
	world := newFactSet(seeds)
	rules := []Rule{
		mustRule(t, `pair(#authority, $a, $b) <- room(#authority, $a), room(#authority, $b)`),
		mustRule(t, `quad(#authority, $a, $b, $c, $d) <- pair(#authority, $a, $b), pair(#authority, $c, $d)`),
	}

	if err := world.saturate(rules); !errors.Is(err, ErrEvaluationLimit) {
		t.Errorf("saturate = %v, want ErrEvaluationLimit", err)
	}
}

func TestFactSet_Dedupes(t *testing.T) {
	fact := mustAtom(t, `right(#authority, "101", #open)`)
	set := newFactSet([]Atom{fact, fact})
	if len(set.facts) != 1 {
		t.Errorf("set holds %d facts, want 1", len(set.facts))
	}
	if set.add(fact) {
		t.Error("add reported a duplicate as new")
	}
}
