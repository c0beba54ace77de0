// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"fmt"
	"strings"
)

// CheckOrigin says where a failed check came from.
type CheckOrigin string

const (
	OriginPolicy CheckOrigin = "policy"
	OriginToken  CheckOrigin = "token"
)

// FailedCheck identifies one check that produced no result.
type FailedCheck struct {
	Origin CheckOrigin
	Index  int
	Rule   Rule
}

// CheckError lists every check that failed in one verification.
// errors.Is(err, ErrChecksFailed) matches it.
type CheckError struct {
	Failed []FailedCheck
}

func (e *CheckError) Error() string {
	parts := make([]string, len(e.Failed))
	for index, failed := range e.Failed {
		parts[index] = fmt.Sprintf("%s check %d: %s", failed.Origin, failed.Index, failed.Rule)
	}
	return ErrChecksFailed.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrChecksFailed.
func (e *CheckError) Is(target error) bool {
	return target == ErrChecksFailed
}

// runChecks records in into every check that produces nothing
// against facts.
func runChecks(facts []Atom, origin CheckOrigin, checks []Rule, into *CheckError) {
	for index, check := range checks {
		if len(query(check, facts)) == 0 {
			into.Failed = append(into.Failed, FailedCheck{Origin: origin, Index: index, Rule: check})
		}
	}
}
