// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"encoding/hex"
	"encoding/json"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
)

// Type - the language of a script
type Type byte

// script languages, the values are the ledger's hash prefixes
const (
	Native   Type = 0
	PlutusV1 Type = 1
	PlutusV2 Type = 2
	PlutusV3 Type = 3
)

var typeNames = map[Type]string{
	Native:   "Native",
	PlutusV1: "PlutusV1",
	PlutusV2: "PlutusV2",
	PlutusV3: "PlutusV3",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "Unknown"
}

// TypeFromString - parse a language name
func TypeFromString(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fault.ErrInvalidScriptType
}

// Script - a program as stored on the ledger
//
// for Plutus languages Code is the CBOR byte string wrapping the
// flat encoded program, for Native it is the CBOR native script
type Script struct {
	Type Type
	Code []byte
}

// Hash - the script hash, also the policy id for minting scripts
func (s Script) Hash() digest.Hash28 {
	buffer := make([]byte, 0, len(s.Code)+1)
	buffer = append(buffer, byte(s.Type))
	buffer = append(buffer, s.Code...)
	return digest.Sum224(buffer)
}

// IsPlutus - true for any Plutus language version
func (s Script) IsPlutus() bool {
	return PlutusV1 == s.Type || PlutusV2 == s.Type || PlutusV3 == s.Type
}

type scriptJSON struct {
	Type   string `json:"type"`
	Script string `json:"script"`
}

// MarshalJSON - as {"type": "PlutusV3", "script": "<hex>"}
func (s Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(scriptJSON{
		Type:   s.Type.String(),
		Script: hex.EncodeToString(s.Code),
	})
}

// UnmarshalJSON - from {"type": "PlutusV3", "script": "<hex>"}
func (s *Script) UnmarshalJSON(b []byte) error {
	var j scriptJSON
	err := json.Unmarshal(b, &j)
	if nil != err {
		return err
	}
	t, err := TypeFromString(j.Type)
	if nil != err {
		return err
	}
	code, err := hex.DecodeString(j.Script)
	if nil != err {
		return fault.ErrInvalidHexString
	}
	s.Type = t
	s.Code = code
	return nil
}
