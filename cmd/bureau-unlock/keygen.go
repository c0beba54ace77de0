// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/bureau-foundation/unlock/lib/authority"
	"github.com/bureau-foundation/unlock/lib/sealed"
	"github.com/bureau-foundation/unlock/lib/secret"
)

func runKeygen(arguments []string, env *environment) (int, error) {
	var output, identityOutput string
	var recipients []string

	flagSet := newFlagSet("keygen", "[--seal-to age1...]... [--identity-output PATH] [--output PATH]", env)
	flagSet.StringVar(&output, "output", "", "write the key to PATH (mode 0600) instead of stdout")
	flagSet.StringArrayVar(&recipients, "seal-to", nil, "age recipient to seal the key to (repeatable)")
	flagSet.StringVar(&identityOutput, "identity-output", "", "generate an age identity, write it to PATH (mode 0600) and seal the key to it")
	if err := parseFlags(flagSet, arguments); err != nil {
		return exitUsage, err
	}
	for _, recipient := range recipients {
		if err := sealed.ValidateRecipient(recipient); err != nil {
			return exitUsage, usagef("--seal-to: %v", err)
		}
	}

	if identityOutput != "" {
		recipient, err := writeIdentity(identityOutput)
		if err != nil {
			return exitClosed, err
		}
		recipients = append(recipients, recipient)
		fmt.Fprintf(env.stderr, "age recipient: %s\n", recipient)
	}

	key, err := authority.Generate()
	if err != nil {
		return exitClosed, err
	}
	defer key.Close()

	var seedHex bytes.Buffer
	if err := key.WriteSeedHex(&seedHex); err != nil {
		return exitClosed, err
	}
	plaintext, err := secret.NewFromBytes(seedHex.Bytes())
	if err != nil {
		return exitClosed, err
	}
	defer plaintext.Close()

	var content []byte
	if len(recipients) > 0 {
		content, err = sealed.Encrypt(plaintext.Bytes(), recipients)
		if err != nil {
			return exitClosed, err
		}
	} else {
		content = make([]byte, plaintext.Len()+1)
		copy(content, plaintext.Bytes())
		content[len(content)-1] = '\n'
	}

	if output == "" {
		if _, err := env.stdout.Write(content); err != nil {
			return exitClosed, err
		}
	} else if err := os.WriteFile(output, content, 0600); err != nil {
		return exitClosed, fmt.Errorf("writing key: %w", err)
	}
	if len(recipients) == 0 {
		secret.Zero(content)
	}

	fmt.Fprintf(env.stderr, "public key: %s\n", hex.EncodeToString(key.PublicKey()))
	return exitOpened, nil
}

// writeIdentity generates an age identity, writes it to path in the
// age identity file format and returns its recipient.
func writeIdentity(path string) (string, error) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return "", err
	}
	defer keypair.Close()

	header := "# public key: " + keypair.Recipient + "\n"
	content := make([]byte, 0, len(header)+keypair.Identity.Len()+1)
	content = append(content, header...)
	content = append(content, keypair.Identity.Bytes()...)
	content = append(content, '\n')
	defer secret.Zero(content)

	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("writing age identity: %w", err)
	}
	return keypair.Recipient, nil
}
