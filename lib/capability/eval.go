// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import "fmt"

// Evaluation limits. A token is small and its rules are few; hitting
// either limit means the token was built to exhaust the verifier.
const (
	maxIterations = 64
	maxFacts      = 4096
)

// factSet is an insertion-ordered set of ground atoms.
type factSet struct {
	facts []Atom
	index map[string]struct{}
}

func newFactSet(initial ...[]Atom) *factSet {
	set := &factSet{index: make(map[string]struct{})}
	for _, group := range initial {
		for _, fact := range group {
			set.add(fact)
		}
	}
	return set
}

// add inserts fact and reports whether it was new.
func (s *factSet) add(fact Atom) bool {
	key := fact.String()
	if _, exists := s.index[key]; exists {
		return false
	}
	s.index[key] = struct{}{}
	s.facts = append(s.facts, fact)
	return true
}

func (s *factSet) contains(fact Atom) bool {
	_, exists := s.index[fact.String()]
	return exists
}

// saturate applies rules until no new fact appears.
func (s *factSet) saturate(rules []Rule) error {
	for iteration := 0; iteration < maxIterations; iteration++ {
		var derived []Atom
		for _, rule := range rules {
			derived = append(derived, query(rule, s.facts)...)
		}

		grew := false
		for _, fact := range derived {
			if s.add(fact) {
				grew = true
			}
		}
		if len(s.facts) > maxFacts {
			return fmt.Errorf("%w: more than %d facts", ErrEvaluationLimit, maxFacts)
		}
		if !grew {
			return nil
		}
	}
	return fmt.Errorf("%w: no fixed point after %d iterations", ErrEvaluationLimit, maxIterations)
}

// bindings maps variable names to the ground terms they matched.
type bindings map[string]Term

// query returns every instantiation of rule.Head for which all body
// atoms match facts under one consistent binding. Duplicates are
// possible; callers dedupe through a factSet.
func query(rule Rule, facts []Atom) []Atom {
	var results []Atom

	var walk func(position int, bound bindings)
	walk = func(position int, bound bindings) {
		if position == len(rule.Body) {
			results = append(results, substitute(rule.Head, bound))
			return
		}
		for _, fact := range facts {
			if extended, ok := unify(rule.Body[position], fact, bound); ok {
				walk(position+1, extended)
			}
		}
	}
	walk(0, bindings{})

	return results
}

// unify matches pattern against a ground fact. Returns the extended
// bindings on success; bound itself is never modified.
func unify(pattern, fact Atom, bound bindings) (bindings, bool) {
	if pattern.Predicate != fact.Predicate || len(pattern.Terms) != len(fact.Terms) {
		return nil, false
	}

	var extended bindings
	for index, term := range pattern.Terms {
		value := fact.Terms[index]
		if !term.IsVariable() {
			if term != value {
				return nil, false
			}
			continue
		}

		if existing, ok := bound[term.Value]; ok {
			if existing != value {
				return nil, false
			}
			continue
		}
		if existing, ok := extended[term.Value]; ok {
			if existing != value {
				return nil, false
			}
			continue
		}
		if extended == nil {
			extended = make(bindings, len(bound)+1)
			for name, boundValue := range bound {
				extended[name] = boundValue
			}
		}
		extended[term.Value] = value
	}

	if extended == nil {
		return bound, true
	}
	return extended, true
}

// substitute replaces variables in head with their bound values. Rule
// validation guarantees every head variable is bound.
func substitute(head Atom, bound bindings) Atom {
	terms := make([]Term, len(head.Terms))
	for index, term := range head.Terms {
		if term.IsVariable() {
			terms[index] = bound[term.Value]
		} else {
			terms[index] = term
		}
	}
	return Atom{Predicate: head.Predicate, Terms: terms}
}
