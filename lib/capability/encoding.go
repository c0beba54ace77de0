// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capability

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeText renders token bytes as standard padded base64.
func EncodeText(token []byte) string {
	return base64.StdEncoding.EncodeToString(token)
}

// DecodeText decodes base64 token text. Surrounding whitespace is
// ignored and padding is optional. Failures wrap ErrInvalidEncoding.
func DecodeText(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidEncoding)
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err == nil {
		return decoded, nil
	}
	decoded, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(trimmed, "="))
	if rawErr == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
}

// ParseText is DecodeText followed by Parse.
func ParseText(text string) (*Token, error) {
	data, err := DecodeText(text)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
