// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/plutusdata"
)

// constructor indices of the on-chain address representation
const (
	constrKeyCredential    = 0
	constrScriptCredential = 1
	constrInline           = 0
	constrSome             = 0
	constrNone             = 1
)

// ToData - on-chain representation
//
//   Address = Constr 0 [payment, maybeStake]
//   payment = Constr 0 [keyHash] | Constr 1 [scriptHash]
//   maybeStake = Constr 0 [Constr 0 [credential]] | Constr 1 []
func (a Address) ToData() plutusdata.Data {
	stake := plutusdata.NewConstr(constrNone)
	if nil != a.Stake {
		stake = plutusdata.NewConstr(constrSome,
			plutusdata.NewConstr(constrInline, a.Stake.toData()))
	}
	return plutusdata.NewConstr(0, a.Payment.toData(), stake)
}

func (c Credential) toData() plutusdata.Data {
	index := uint64(constrKeyCredential)
	if ScriptHash == c.Type {
		index = constrScriptCredential
	}
	return plutusdata.NewConstr(index, plutusdata.Bytes(c.Hash[:]))
}

// FromData - decode the on-chain representation
//
// the network is not part of the data so must be supplied
func FromData(d plutusdata.Data, networkId byte) (*Address, error) {
	fields, err := plutusdata.AsConstr(d, 0, 2)
	if nil != err {
		return nil, err
	}

	payment, err := credentialFromData(fields[0])
	if nil != err {
		return nil, err
	}

	a := &Address{
		NetworkId: networkId,
		Payment:   *payment,
	}

	maybe, ok := fields[1].(plutusdata.Constr)
	if !ok {
		return nil, fault.ErrUnexpectedDataType
	}
	switch maybe.Index {
	case constrNone:
		if 0 != len(maybe.Fields) {
			return nil, fault.ErrWrongNumberOfConstrFields
		}
	case constrSome:
		if 1 != len(maybe.Fields) {
			return nil, fault.ErrWrongNumberOfConstrFields
		}
		inline, err := plutusdata.AsConstr(maybe.Fields[0], constrInline, 1)
		if nil != err {
			return nil, err
		}
		a.Stake, err = credentialFromData(inline[0])
		if nil != err {
			return nil, err
		}
	default:
		return nil, fault.ErrUnexpectedConstructor
	}
	return a, nil
}

func credentialFromData(d plutusdata.Data) (*Credential, error) {
	c, ok := d.(plutusdata.Constr)
	if !ok {
		return nil, fault.ErrUnexpectedDataType
	}
	if 1 != len(c.Fields) {
		return nil, fault.ErrWrongNumberOfConstrFields
	}

	credential := &Credential{}
	switch c.Index {
	case constrKeyCredential:
		credential.Type = KeyHash
	case constrScriptCredential:
		credential.Type = ScriptHash
	default:
		return nil, fault.ErrUnexpectedConstructor
	}

	b, err := plutusdata.AsBytes(c.Fields[0])
	if nil != err {
		return nil, err
	}
	if nil != digest.Hash28FromBytes(&credential.Hash, b) {
		return nil, fault.ErrInvalidDatum
	}
	return credential, nil
}
