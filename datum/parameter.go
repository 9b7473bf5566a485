// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datum

import (
	"fmt"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/bounty"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/plutusdata"
)

const parameterFields = 4

// Parameter - marketplace configuration
type Parameter struct {
	RaiderLockerScriptHash  digest.Hash28   `json:"raiderLockerScriptHash"`
	ProjectAddress          address.Address `json:"projectAddress"`
	FeePercentage           uint64          `json:"feePercentage"`
	AuthorizersPubKeyHashes []digest.Hash28 `json:"authorizersPubKeyHashes"`
}

// NewParameter - create a parameter with the fee clamped to 0..100
func NewParameter(raidLock digest.Hash28, project address.Address, feePercentage int64, authorizers []digest.Hash28) *Parameter {
	switch {
	case feePercentage < 0:
		feePercentage = 0
	case feePercentage > bounty.MaxFeePercentage:
		feePercentage = bounty.MaxFeePercentage
	}
	if nil == authorizers {
		authorizers = []digest.Hash28{}
	}
	return &Parameter{
		RaiderLockerScriptHash:  raidLock,
		ProjectAddress:          project,
		FeePercentage:           uint64(feePercentage),
		AuthorizersPubKeyHashes: authorizers,
	}
}

// IsAuthorizer - true if the key hash may waive the fee
func (p *Parameter) IsAuthorizer(keyHash digest.Hash28) bool {
	for _, a := range p.AuthorizersPubKeyHashes {
		if a == keyHash {
			return true
		}
	}
	return false
}

// ToData - structured form
func (p *Parameter) ToData() plutusdata.Data {
	authorizers := make(plutusdata.List, len(p.AuthorizersPubKeyHashes))
	for i, a := range p.AuthorizersPubKeyHashes {
		authorizers[i] = plutusdata.Bytes(a.Bytes())
	}
	return plutusdata.NewConstr(0,
		plutusdata.Bytes(p.RaiderLockerScriptHash.Bytes()),
		p.ProjectAddress.ToData(),
		plutusdata.Uint(p.FeePercentage),
		authorizers,
	)
}

// Pack - binary form for an inline datum
func (p *Parameter) Pack() (plutusdata.Packed, error) {
	if p.FeePercentage > bounty.MaxFeePercentage {
		return nil, fault.ErrFeePercentageOutOfRange
	}
	return plutusdata.Pack(p.ToData())
}

// UnpackParameter - decode an inline datum
//
// the address network is not recorded so must be supplied
func UnpackParameter(record plutusdata.Packed, networkId byte) (*Parameter, error) {
	d, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	p, err := ParameterFromData(d, networkId)
	if nil != err {
		return nil, fmt.Errorf("parameter: %w", err)
	}
	return p, nil
}

// ParameterFromData - decode the structured form
func ParameterFromData(d plutusdata.Data, networkId byte) (*Parameter, error) {
	fields, err := plutusdata.AsConstr(d, 0, parameterFields)
	if nil != err {
		return nil, err
	}

	p := &Parameter{}

	err = hash28FromData(&p.RaiderLockerScriptHash, fields[0])
	if nil != err {
		return nil, err
	}

	project, err := address.FromData(fields[1], networkId)
	if nil != err {
		return nil, err
	}
	p.ProjectAddress = *project

	p.FeePercentage, err = plutusdata.AsUint64(fields[2])
	if nil != err {
		return nil, err
	}
	if p.FeePercentage > bounty.MaxFeePercentage {
		return nil, fault.ErrFeePercentageOutOfRange
	}

	list, err := plutusdata.AsList(fields[3])
	if nil != err {
		return nil, err
	}
	p.AuthorizersPubKeyHashes = make([]digest.Hash28, len(list))
	for i, item := range list {
		err := hash28FromData(&p.AuthorizersPubKeyHashes[i], item)
		if nil != err {
			return nil, err
		}
	}
	return p, nil
}

func hash28FromData(h *digest.Hash28, d plutusdata.Data) error {
	b, err := plutusdata.AsBytes(d)
	if nil != err {
		return err
	}
	if nil != digest.Hash28FromBytes(h, b) {
		return fault.ErrInvalidDatum
	}
	return nil
}
