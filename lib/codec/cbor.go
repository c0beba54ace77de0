// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the Core Deterministic encoder. Same logical data always
// produces identical bytes.
var encMode cbor.EncMode

// strictDecMode rejects duplicate map keys and unknown fields. Used for
// payloads covered by a signature.
var strictDecMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	strictDecMode, err = cbor.DecOptions{
		// Targets typed as any decode maps as map[string]any rather
		// than the CBOR default map[interface{}]interface{}.
		DefaultMapType:    reflect.TypeOf(map[string]any(nil)),
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		IndefLength:       cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic("codec: strict CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// UnmarshalStrict decodes CBOR data into v, rejecting duplicate map
// keys, indefinite-length items and fields v does not declare.
func UnmarshalStrict(data []byte, v any) error {
	return strictDecMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. `bureau-unlock open --explain` uses it to show what a token
// actually carries.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
