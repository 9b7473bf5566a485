// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"encoding/hex"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
)

// native script constructor for a required signature
const nativeSignature = 0

type signatureScript struct {
	_       struct{} `cbor:",toarray"`
	Kind    uint64
	KeyHash []byte
}

// NativeSignature - script satisfied only by a signature from the key
func NativeSignature(keyHash digest.Hash28) Script {
	code, err := cbor.Marshal(signatureScript{
		Kind:    nativeSignature,
		KeyHash: keyHash[:],
	})
	if nil != err {
		// fixed shape, cannot fail
		panic(err)
	}
	return Script{
		Type: Native,
		Code: code,
	}
}

// SignatureKeyHash - the key hash of a native signature script
func SignatureKeyHash(s Script) (digest.Hash28, error) {
	var h digest.Hash28
	if Native != s.Type {
		return h, fault.ErrInvalidScriptType
	}
	var sig signatureScript
	err := cbor.Unmarshal(s.Code, &sig)
	if nil != err || nativeSignature != sig.Kind {
		return h, fault.ErrInvalidScriptType
	}
	err = digest.Hash28FromBytes(&h, sig.KeyHash)
	return h, err
}

// pieces of a PlutusV2 program that unconditionally fails; the middle
// is filled with random digits so every deployment gets its own address
const (
	alwaysFailHeader     = "5839010000322253330033371e9101203"
	alwaysFailFooter     = "0048810014984d9595cd01"
	alwaysFailBodyDigits = 63
)

// AlwaysFail - a program whose outputs can be read but never spent
func AlwaysFail(rand io.Reader) (Script, error) {
	digits := make([]byte, alwaysFailBodyDigits)
	_, err := io.ReadFull(rand, digits)
	if nil != err {
		return Script{}, err
	}
	for i, b := range digits {
		digits[i] = '0' + b%10
	}

	code, err := hex.DecodeString(alwaysFailHeader + string(digits) + alwaysFailFooter)
	if nil != err {
		return Script{}, err
	}
	return Script{
		Type: PlutusV2,
		Code: code,
	}, nil
}
