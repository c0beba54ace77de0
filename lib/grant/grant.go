// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package grant describes what a minted token allows, in a JSONC file
// operators can keep under version control:
//
//	{
//	  // Rooms the holder may open.
//	  "rooms": ["101", "lab"],
//	  "ttl": "24h",
//	  // Extra authority facts, rules and checks in datalog text.
//	  "checks": ["ok($r) <- resource(#ambient, $r), owner(#ambient, #alice, $r)"],
//	}
//
// [Spec.Claims] turns a spec into signed-token claims.
package grant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/unlock/lib/capability"
	"github.com/bureau-foundation/unlock/lib/roompolicy"
)

// Spec is one grant file.
type Spec struct {
	// Rooms each get a right(#authority, "<room>", #<operation>)
	// fact for every operation.
	Rooms []string `json:"rooms,omitempty"`

	// Operations defaults to ["open"].
	Operations []string `json:"operations,omitempty"`

	// TTL is a Go duration. Empty means the token never expires.
	TTL string `json:"ttl,omitempty"`

	// Facts, Rules and Checks are datalog text; see
	// capability.ParseFact and capability.ParseRule.
	Facts  []string `json:"facts,omitempty"`
	Rules  []string `json:"rules,omitempty"`
	Checks []string `json:"checks,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data and
// unmarshals the result. Unknown fields are rejected.
func Parse(data []byte) (*Spec, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()
	var spec Spec
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing grant: %w", err)
	}
	return &spec, nil
}

// ReadFile reads and parses a grant file.
func ReadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Merge appends other's lists to spec. A non-empty TTL in other
// replaces spec's.
func (spec *Spec) Merge(other Spec) {
	spec.Rooms = append(spec.Rooms, other.Rooms...)
	spec.Operations = append(spec.Operations, other.Operations...)
	spec.Facts = append(spec.Facts, other.Facts...)
	spec.Rules = append(spec.Rules, other.Rules...)
	spec.Checks = append(spec.Checks, other.Checks...)
	if other.TTL != "" {
		spec.TTL = other.TTL
	}
}

// Claims builds token claims issued at now.
func (spec *Spec) Claims(now time.Time) (capability.Claims, error) {
	var errs []error
	var block capability.Block

	operations := spec.Operations
	if len(operations) == 0 {
		operations = []string{roompolicy.OperationOpen}
	}
	for _, room := range spec.Rooms {
		if room == "" {
			errs = append(errs, errors.New("empty room identifier"))
			continue
		}
		for _, operation := range operations {
			block.Facts = append(block.Facts, roompolicy.Grant(room, operation))
		}
	}

	for _, text := range spec.Facts {
		fact, err := capability.ParseFact(text, capability.SymbolAuthority)
		if err != nil {
			errs = append(errs, fmt.Errorf("fact %q: %w", text, err))
			continue
		}
		block.Facts = append(block.Facts, fact)
	}
	for _, text := range spec.Rules {
		rule, err := capability.ParseRule(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", text, err))
			continue
		}
		block.Rules = append(block.Rules, rule)
	}
	for _, text := range spec.Checks {
		check, err := capability.ParseRule(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("check %q: %w", text, err))
			continue
		}
		block.Checks = append(block.Checks, check)
	}

	claims := capability.Claims{
		Version:   capability.ClaimsVersion,
		Authority: block,
		IssuedAt:  now.Unix(),
	}
	if spec.TTL != "" {
		ttl, err := time.ParseDuration(spec.TTL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("ttl: %w", err))
		case ttl < time.Second:
			errs = append(errs, fmt.Errorf("ttl %s is shorter than one second", spec.TTL))
		default:
			claims.ExpiresAt = now.Add(ttl).Unix()
		}
	}

	if len(errs) > 0 {
		return capability.Claims{}, errors.Join(errs...)
	}
	if err := claims.Validate(); err != nil {
		return capability.Claims{}, err
	}
	return claims, nil
}
