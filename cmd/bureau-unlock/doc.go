// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-unlock checks whether a capability token opens a room.
//
// Subcommands:
//
//	bureau-unlock open --room 101 --token-file token.txt [--explain]
//	bureau-unlock mint --room 101 --ttl 24h
//	bureau-unlock keygen [--seal-to age1... | --identity-output id.txt]
//	bureau-unlock form
//
// open submits one room and token to the unlock machine and prints
// "Door Opened." or "Door still Closed.". form does the same through an
// interactive terminal form. mint issues tokens signed by the configured
// authority key, and keygen creates a new key.
//
// Configuration comes from --config or BUREAU_UNLOCK_CONFIG (see
// lib/config). Exit status is 0 when the door opened (or the command
// succeeded), 1 when it stayed closed, and 2 for usage or configuration
// errors.
package main
