// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/plutusdata"
)

// ApplyParams - apply data parameters to a Plutus program
//
// the result is [[[program p0] p1] ...] re-encoded, so its hash is
// a pure function of the original code and the parameters
func ApplyParams(s Script, params ...plutusdata.Data) (Script, error) {
	if !s.IsPlutus() {
		return Script{}, fault.ErrInvalidScriptType
	}

	flat, err := unwrap(s.Code)
	if nil != err {
		return Script{}, err
	}

	p, err := decodeProgram(flat)
	if nil != err {
		return Script{}, err
	}

	body := p.body
	for _, param := range params {
		packed, err := plutusdata.Pack(param)
		if nil != err {
			return Script{}, err
		}
		body = applyTerm{
			function: body,
			argument: constTerm{
				constant: constant{
					types: []byte{typeData},
					value: []byte(packed),
				},
			},
		}
	}
	p.body = body

	code, err := cbor.Marshal(p.encode())
	if nil != err {
		return Script{}, err
	}
	return Script{
		Type: s.Type,
		Code: code,
	}, nil
}

// Validate - check that a Plutus program is well formed
func Validate(s Script) error {
	if !s.IsPlutus() {
		return nil
	}
	flat, err := unwrap(s.Code)
	if nil != err {
		return err
	}
	_, err = decodeProgram(flat)
	return err
}

// strip the byte string wrapping, once or twice depending on
// the tool that produced the code
func unwrap(code []byte) ([]byte, error) {
	var flat []byte
	err := cbor.Unmarshal(code, &flat)
	if nil != err {
		return nil, fault.ErrInvalidProgram
	}

	var inner []byte
	if nil == cbor.Unmarshal(flat, &inner) {
		return inner, nil
	}
	return flat, nil
}
